// Package main is the entry point for midiunion CLI
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "midiunion",
	Short: "Forward MIDI between devices with channel remapping and octave splits",
	Long: `midiunion forwards MIDI from one device to another in real time.

Every channel message can be moved to a single channel, or notes can be
split at an octave: notes below the cutoff and notes at or above it each
get their own channel and octave shift.

Examples:
  midiunion list
  midiunion forward -i "Keystation 49" -o "IAC Bus 1" --channel 10
  midiunion forward -i Keys -o Synth --split --cutoff 4 --above-channel 3 --above-transpose 1
  midiunion route --split --above-channel 3 --above-transpose 1 90 3C 64
  midiunion tui
  midiunion serve --port 8080`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List MIDI input and output devices",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var forwardCmd = &cobra.Command{
	Use:   "forward",
	Short: "Forward MIDI until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runForward,
}

var routeCmd = &cobra.Command{
	Use:   "route <hex bytes>...",
	Short: "Show how a message would be routed, without any device",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRoute,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML profile to load (never written)")

	for _, cmd := range []*cobra.Command{forwardCmd, tuiCmd} {
		cmd.Flags().StringVarP(&inputName, "input", "i", "", "Input device name")
		cmd.Flags().StringVarP(&outputName, "output", "o", "", "Output device name")
	}
	for _, cmd := range []*cobra.Command{forwardCmd, routeCmd, tuiCmd} {
		addRoutingFlags(cmd)
	}

	forwardCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print forwarded messages")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "Server port (default from profile, 8080)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(forwardCmd)
	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}
