package config

import (
	"time"

	"github.com/james-see/midiunion/pkg/router"
)

// Default values for optional configuration fields.
const (
	DefaultPollInterval    = time.Millisecond
	DefaultRefreshInterval = 100 * time.Millisecond
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultLogOutput       = "stderr"
	DefaultAPIHost         = "127.0.0.1"
	DefaultAPIPort         = 8080
	DefaultMQTTBroker      = "tcp://localhost:1883"
	DefaultMQTTClientID    = "midiunion"
	DefaultMQTTTopicPrefix = "midiunion"
)

// Default returns a profile that forwards everything untouched
func Default() *Config {
	cfg := &Config{
		Routing: RoutingConfig{
			Mode:    router.ModeUniform,
			Channel: Channel{router.Omni},
			Below:   RuleConfig{Channel: Channel{router.Omni}},
			Above:   RuleConfig{Channel: Channel{router.Omni}},
		},
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.RefreshInterval == 0 {
		c.RefreshInterval = DefaultRefreshInterval
	}
	if c.Routing.Mode == "" {
		c.Routing.Mode = router.ModeUniform
	}

	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	if c.Logging.Output == "" {
		c.Logging.Output = DefaultLogOutput
	}

	if c.API.Host == "" {
		c.API.Host = DefaultAPIHost
	}
	if c.API.Port == 0 {
		c.API.Port = DefaultAPIPort
	}

	if c.MQTT.Broker == "" {
		c.MQTT.Broker = DefaultMQTTBroker
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = DefaultMQTTClientID
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = DefaultMQTTTopicPrefix
	}
}
