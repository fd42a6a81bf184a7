// Package router decides how each incoming MIDI message is rewritten before it is forwarded
package router

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Channel is a MIDI channel (0-15) or Omni
type Channel int

// Omni leaves the channel of a message untouched
const Omni Channel = -1

// Ch returns the zero-based channel n
func Ch(n uint8) Channel {
	return Channel(n & 0x0F)
}

// IsOmni reports whether c leaves channels unchanged
func (c Channel) IsOmni() bool {
	return c == Omni
}

// Valid reports whether c is Omni or in 0-15
func (c Channel) Valid() bool {
	return c == Omni || (c >= 0 && c <= 15)
}

// String renders the channel the way users type it: "omni" or 1-16
func (c Channel) String() string {
	if c.IsOmni() {
		return "omni"
	}
	return strconv.Itoa(int(c) + 1)
}

// ParseChannel parses "omni", "0" (omni) or a user-facing channel 1-16
func ParseChannel(s string) (Channel, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", "omni", "0", "omni (0)":
		return Omni, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 16 {
		return Omni, fmt.Errorf("%w: channel %q (must be omni or 1-16)", ErrInvalidConfig, s)
	}
	return Channel(n - 1), nil
}

// MarshalJSON encodes omni as a string and other channels as 1-16
func (c Channel) MarshalJSON() ([]byte, error) {
	if c.IsOmni() {
		return []byte(`"omni"`), nil
	}
	return []byte(strconv.Itoa(int(c) + 1)), nil
}

// UnmarshalJSON accepts either a number (0 = omni, 1-16) or a string
func (c *Channel) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		parsed, err := ParseChannel(strconv.Itoa(n))
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: channel must be a number or string", ErrInvalidConfig)
	}
	parsed, err := ParseChannel(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Mode selects which routing behavior a Config describes
type Mode string

const (
	ModeUniform Mode = "uniform"
	ModeSplit   Mode = "split"
)

// Rule is applied to the notes of one side of the cutoff
type Rule struct {
	Channel   Channel `json:"channel"`
	Transpose int     `json:"transpose"` // whole octaves
}

// Config is the routing configuration of a session. Only the fields of
// the selected Mode are meaningful.
type Config struct {
	Mode Mode `json:"mode"`

	// uniform
	OverrideChannel Channel `json:"override_channel"`

	// split
	CutoffOctave int  `json:"cutoff_octave"`
	Below        Rule `json:"below"`
	Above        Rule `json:"above"`
}

// UniformConfig builds a uniform channel override configuration
func UniformConfig(ch Channel) Config {
	return Config{Mode: ModeUniform, OverrideChannel: ch}
}

// SplitConfig builds a cutoff split configuration
func SplitConfig(cutoffOctave int, below, above Rule) Config {
	return Config{Mode: ModeSplit, CutoffOctave: cutoffOctave, Below: below, Above: above}
}

// DefaultCutoffOctave matches the octave the piano display starts at
const DefaultCutoffOctave = 4

// DefaultConfig forwards everything untouched. Split fields are preset to
// Omni so a partially filled split config never rewrites to channel 1.
func DefaultConfig() Config {
	return Config{
		Mode:            ModeUniform,
		OverrideChannel: Omni,
		CutoffOctave:    DefaultCutoffOctave,
		Below:           Rule{Channel: Omni},
		Above:           Rule{Channel: Omni},
	}
}

// Validate checks the fields used by the selected mode
func (c Config) Validate() error {
	switch c.Mode {
	case ModeUniform:
		if !c.OverrideChannel.Valid() {
			return fmt.Errorf("%w: override channel %d out of range", ErrInvalidConfig, c.OverrideChannel)
		}
	case ModeSplit:
		if !c.Below.Channel.Valid() {
			return fmt.Errorf("%w: below channel %d out of range", ErrInvalidConfig, c.Below.Channel)
		}
		if !c.Above.Channel.Valid() {
			return fmt.Errorf("%w: above channel %d out of range", ErrInvalidConfig, c.Above.Channel)
		}
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, c.Mode)
	}
	return nil
}

// String summarizes the configuration for status lines
func (c Config) String() string {
	switch c.Mode {
	case ModeSplit:
		return fmt.Sprintf("split at octave %d: below ch %s %+d oct, above ch %s %+d oct",
			c.CutoffOctave, c.Below.Channel, c.Below.Transpose, c.Above.Channel, c.Above.Transpose)
	case ModeUniform:
		if c.OverrideChannel.IsOmni() {
			return "Omni"
		}
		return fmt.Sprintf("Ch %s", c.OverrideChannel)
	default:
		return string(c.Mode)
	}
}
