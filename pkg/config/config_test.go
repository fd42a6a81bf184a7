package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/james-see/midiunion/pkg/router"
)

func TestLoad_SplitProfile(t *testing.T) {
	content := `
input: "Keystation 49"
output: "Minilogue"
routing:
  mode: split
  cutoff_octave: 3
  below:
    channel: 2
    transpose: -1
  above:
    channel: omni
    transpose: 1
poll_interval: 2ms
logging:
  level: debug
  format: json
`
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Input != "Keystation 49" || cfg.Output != "Minilogue" {
		t.Errorf("devices = %q/%q", cfg.Input, cfg.Output)
	}
	if cfg.PollInterval != 2*time.Millisecond {
		t.Errorf("PollInterval = %v, want 2ms", cfg.PollInterval)
	}
	if cfg.RefreshInterval != DefaultRefreshInterval {
		t.Errorf("RefreshInterval = %v, want default", cfg.RefreshInterval)
	}

	rc := cfg.Routing.Router()
	want := router.SplitConfig(3, router.Rule{Channel: 1, Transpose: -1}, router.Rule{Channel: router.Omni, Transpose: 1})
	want.OverrideChannel = router.Omni
	if rc != want {
		t.Errorf("Router() = %+v, want %+v", rc, want)
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("input: Keys\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	rc := cfg.Routing.Router()
	if rc.Mode != router.ModeUniform || rc.OverrideChannel != router.Omni {
		t.Errorf("routing = %+v, want uniform omni", rc)
	}
	if rc.CutoffOctave != router.DefaultCutoffOctave {
		t.Errorf("cutoff = %d, want %d", rc.CutoffOctave, router.DefaultCutoffOctave)
	}
	if cfg.API.Port != DefaultAPIPort {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, DefaultAPIPort)
	}
	if cfg.MQTT.Enabled {
		t.Error("MQTT should be disabled by default")
	}
}

func TestParse_UniformChannel(t *testing.T) {
	cfg, err := Parse([]byte("routing:\n  channel: 10\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := cfg.Routing.Router().OverrideChannel; got != 9 {
		t.Errorf("OverrideChannel = %d, want 9", got)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"channel out of range", "routing:\n  channel: 17\n"},
		{"unknown mode", "routing:\n  mode: chord\n"},
		{"bad log format", "logging:\n  format: xml\n"},
		{"bad port", "api:\n  port: 70000\n"},
		{"bad qos", "mqtt:\n  enabled: true\n  qos: 3\n"},
		{"not yaml", "routing: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.content)); err == nil {
				t.Error("Parse() expected error")
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MIDIUNION_INPUT", "Env Keys")
	t.Setenv("MIDIUNION_LOG_LEVEL", "warn")

	cfg, err := Parse([]byte("input: File Keys\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Input != "Env Keys" {
		t.Errorf("Input = %q, want %q", cfg.Input, "Env Keys")
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() expected error for missing file")
	}
}
