// Package config loads forwarding profiles from YAML. Profiles are only
// read; nothing is written back.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/james-see/midiunion/pkg/router"
)

// Config is the root of a profile file
type Config struct {
	Input           string        `yaml:"input"`
	Output          string        `yaml:"output"`
	Routing         RoutingConfig `yaml:"routing"`
	PollInterval    time.Duration `yaml:"poll_interval"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	Logging         LoggingConfig `yaml:"logging"`
	API             APIConfig     `yaml:"api"`
	MQTT            MQTTConfig    `yaml:"mqtt"`
}

// RoutingConfig is the YAML shape of router.Config
type RoutingConfig struct {
	Mode         router.Mode `yaml:"mode"`
	Channel      Channel     `yaml:"channel"`
	CutoffOctave *int        `yaml:"cutoff_octave"`
	Below        RuleConfig  `yaml:"below"`
	Above        RuleConfig  `yaml:"above"`
}

// RuleConfig is one side of a split
type RuleConfig struct {
	Channel   Channel `yaml:"channel"`
	Transpose int     `yaml:"transpose"`
}

// LoggingConfig selects the structured log output
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or text
	Output string `yaml:"output"` // stdout, stderr or a file path
}

// APIConfig configures the HTTP control server
type APIConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// MQTTConfig configures the optional MQTT notification sink
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
	QoS         int    `yaml:"qos"`
}

// Channel is a router.Channel written as omni, 0 or 1-16
type Channel struct {
	router.Channel
}

// UnmarshalYAML parses scalars such as `omni`, `0` or `10`
func (c *Channel) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: channel must be a scalar", value.Line)
	}
	ch, err := router.ParseChannel(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	c.Channel = ch
	return nil
}

// Load reads, defaults and validates a profile
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse is Load for in-memory YAML
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Router converts the routing section into a router.Config
func (r RoutingConfig) Router() router.Config {
	cfg := router.DefaultConfig()
	if r.Mode != "" {
		cfg.Mode = r.Mode
	}
	cfg.OverrideChannel = r.Channel.Channel
	if r.CutoffOctave != nil {
		cfg.CutoffOctave = *r.CutoffOctave
	}
	cfg.Below = router.Rule{Channel: r.Below.Channel.Channel, Transpose: r.Below.Transpose}
	cfg.Above = router.Rule{Channel: r.Above.Channel.Channel, Transpose: r.Above.Transpose}
	return cfg
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MIDIUNION_INPUT"); v != "" {
		cfg.Input = v
	}
	if v := os.Getenv("MIDIUNION_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv("MIDIUNION_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("MIDIUNION_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Password = v
	}
}
