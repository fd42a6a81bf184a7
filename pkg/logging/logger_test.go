package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/james-see/midiunion/pkg/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"loud":    slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestJSONOutputHasDefaultFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, config.LoggingConfig{Level: "info", Format: "json"}, "1.2.3")
	l.With("component", "forwarder").Info("session started", "input", "Keys")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	for key, want := range map[string]string{
		"service":   "midiunion",
		"version":   "1.2.3",
		"component": "forwarder",
		"input":     "Keys",
		"msg":       "session started",
	} {
		if entry[key] != want {
			t.Errorf("%s = %v, want %q", key, entry[key], want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, config.LoggingConfig{Level: "warn", Format: "text"}, "dev")
	l.Info("hidden")
	l.Warn("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("info line written at warn level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("warn line missing")
	}
}

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "midiunion.log")
	l, err := New(config.LoggingConfig{Output: path}, "dev")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	l.Info("hello")
	if err := l.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
