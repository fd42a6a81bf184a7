package tui

import (
	"fmt"

	"github.com/james-see/midiunion/pkg/router"
)

type field int

const (
	fieldMode field = iota
	fieldChannel
	fieldCutoff
	fieldBelowChannel
	fieldBelowTranspose
	fieldAboveChannel
	fieldAboveTranspose
)

const (
	minCutoff    = -1
	maxCutoff    = 9
	minTranspose = -4
	maxTranspose = 6
)

func (f field) label() string {
	switch f {
	case fieldMode:
		return "Mode"
	case fieldChannel:
		return "Channel"
	case fieldCutoff:
		return "Cutoff octave"
	case fieldBelowChannel:
		return "Below channel"
	case fieldBelowTranspose:
		return "Below octave shift"
	case fieldAboveChannel:
		return "Above channel"
	case fieldAboveTranspose:
		return "Above octave shift"
	}
	return ""
}

// formFields lists the fields the selected mode uses, in display order
func formFields(cfg router.Config) []field {
	if cfg.Mode == router.ModeSplit {
		return []field{fieldMode, fieldCutoff, fieldBelowChannel, fieldBelowTranspose, fieldAboveChannel, fieldAboveTranspose}
	}
	return []field{fieldMode, fieldChannel}
}

func fieldValue(cfg router.Config, f field) string {
	switch f {
	case fieldMode:
		return string(cfg.Mode)
	case fieldChannel:
		return cfg.OverrideChannel.String()
	case fieldCutoff:
		return fmt.Sprintf("%d", cfg.CutoffOctave)
	case fieldBelowChannel:
		return cfg.Below.Channel.String()
	case fieldBelowTranspose:
		return fmt.Sprintf("%+d", cfg.Below.Transpose)
	case fieldAboveChannel:
		return cfg.Above.Channel.String()
	case fieldAboveTranspose:
		return fmt.Sprintf("%+d", cfg.Above.Transpose)
	}
	return ""
}

// adjust steps a field by delta. Channels wrap through omni, numbers clamp.
func adjust(cfg router.Config, f field, delta int) router.Config {
	switch f {
	case fieldMode:
		if cfg.Mode == router.ModeSplit {
			cfg.Mode = router.ModeUniform
		} else {
			cfg.Mode = router.ModeSplit
		}
	case fieldChannel:
		cfg.OverrideChannel = stepChannel(cfg.OverrideChannel, delta)
	case fieldCutoff:
		cfg.CutoffOctave = clamp(cfg.CutoffOctave+delta, minCutoff, maxCutoff)
	case fieldBelowChannel:
		cfg.Below.Channel = stepChannel(cfg.Below.Channel, delta)
	case fieldBelowTranspose:
		cfg.Below.Transpose = clamp(cfg.Below.Transpose+delta, minTranspose, maxTranspose)
	case fieldAboveChannel:
		cfg.Above.Channel = stepChannel(cfg.Above.Channel, delta)
	case fieldAboveTranspose:
		cfg.Above.Transpose = clamp(cfg.Above.Transpose+delta, minTranspose, maxTranspose)
	}
	return cfg
}

// stepChannel cycles omni, 1, 2, ... 16, omni
func stepChannel(ch router.Channel, delta int) router.Channel {
	const n = 17
	i := (int(ch) + 1 + delta) % n
	if i < 0 {
		i += n
	}
	return router.Channel(i - 1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
