package config

import (
	"fmt"
	"strings"
)

// Validate checks that all values are usable. Devices may be left empty;
// they can still be chosen on the command line or in the TUI.
func (c *Config) Validate() error {
	if err := c.Routing.Router().Validate(); err != nil {
		return fmt.Errorf("routing: %w", err)
	}

	if c.PollInterval < 0 {
		return fmt.Errorf("poll_interval must be positive, got %v", c.PollInterval)
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("refresh_interval must be positive, got %v", c.RefreshInterval)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text, got %q", c.Logging.Format)
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("api.port must be between 1 and 65535, got %d", c.API.Port)
	}

	if c.MQTT.Enabled {
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			return fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", c.MQTT.QoS)
		}
		if c.MQTT.Broker == "" {
			return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
		}
	}

	return nil
}
