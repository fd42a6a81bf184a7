package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/james-see/midiunion/pkg/config"
	"github.com/james-see/midiunion/pkg/router"
)

var (
	configPath string
	inputName  string
	outputName string
	quiet      bool
	serverPort int

	channel        string
	split          bool
	cutoff         int
	belowChannel   string
	belowTranspose int
	aboveChannel   string
	aboveTranspose int
)

func addRoutingFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&channel, "channel", "omni", "Send every channel message on this channel (omni or 1-16)")
	f.BoolVar(&split, "split", false, "Split notes at the cutoff octave instead")
	f.IntVar(&cutoff, "cutoff", router.DefaultCutoffOctave, "First octave that counts as above the split")
	f.StringVar(&belowChannel, "below-channel", "omni", "Channel for notes below the cutoff")
	f.IntVar(&belowTranspose, "below-transpose", 0, "Octave shift for notes below the cutoff")
	f.StringVar(&aboveChannel, "above-channel", "omni", "Channel for notes at or above the cutoff")
	f.IntVar(&aboveTranspose, "above-transpose", 0, "Octave shift for notes at or above the cutoff")
}

// loadConfig reads the profile named by --config, or the defaults
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

// applyFlags lets explicitly set flags override the profile
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	if f.Changed("input") {
		cfg.Input = inputName
	}
	if f.Changed("output") {
		cfg.Output = outputName
	}
	if f.Changed("split") {
		if split {
			cfg.Routing.Mode = router.ModeSplit
		} else {
			cfg.Routing.Mode = router.ModeUniform
		}
	}
	if f.Changed("cutoff") {
		c := cutoff
		cfg.Routing.CutoffOctave = &c
	}
	if f.Changed("below-transpose") {
		cfg.Routing.Below.Transpose = belowTranspose
	}
	if f.Changed("above-transpose") {
		cfg.Routing.Above.Transpose = aboveTranspose
	}

	channels := []struct {
		flag  string
		value string
		dst   *config.Channel
	}{
		{"channel", channel, &cfg.Routing.Channel},
		{"below-channel", belowChannel, &cfg.Routing.Below.Channel},
		{"above-channel", aboveChannel, &cfg.Routing.Above.Channel},
	}
	for _, c := range channels {
		if !f.Changed(c.flag) {
			continue
		}
		ch, err := router.ParseChannel(c.value)
		if err != nil {
			return fmt.Errorf("--%s: %w", c.flag, err)
		}
		c.dst.Channel = ch
	}

	if f.Changed("channel") && !f.Changed("split") {
		cfg.Routing.Mode = router.ModeUniform
	}
	return cfg.Validate()
}
