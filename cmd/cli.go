// SPDX-License-Identifier: MIT
//
// Package cmd parses command line arguments into a runtime configuration.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"audioviz/internal/config"
	"audioviz/pkg/build"
)

// ParseArgs builds the root command, runs it against os.Args, and
// returns the resulting configuration. The returned Config carries the
// selected command in cfg.Command ("analyze", "listen", or "list").
func ParseArgs() (*config.Config, error) {
	return parseArgs(os.Args[1:])
}

func parseArgs(args []string) (*config.Config, error) {
	buildInfo := build.GetInfo()

	var (
		configPath string
		verbose    bool
		cfg        *config.Config
	)

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       fmt.Sprintf("%s (%s, %s)", buildInfo.Version, buildInfo.Commit, buildInfo.Date),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Flags are parsed before RunE fires, so the config file is loaded
	// lazily and flag values overlaid afterwards.
	loadConfig := func(cmd *cobra.Command) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		if verbose {
			cfg.Debug = true
			cfg.LogLevel = "debug"
		}
		overlayFlags(cmd, cfg)
		return cfg.Validate()
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze <file.wav>",
		Short: "Analyze a WAV file and emit a JSON report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd); err != nil {
				return err
			}
			cfg.Command = "analyze"
			cfg.InputFile = args[0]
			return nil
		},
	}
	analyzeCmd.Flags().StringP("output", "o", "",
		"Write the JSON report to this file instead of stdout")

	listenCmd := &cobra.Command{
		Use:   "listen",
		Short: "Capture live audio and stream spectrum frames over WebSocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd); err != nil {
				return err
			}
			cfg.Command = "listen"
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd); err != nil {
				return err
			}
			cfg.Command = "list"
			return nil
		},
	}

	rootCmd.AddCommand(analyzeCmd, listenCmd, listCmd)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to a YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	rootCmd.PersistentFlags().IntP("device", "d", config.DefaultInputDevice,
		"Input device ID, use the 'list' command to see available devices")
	rootCmd.PersistentFlags().IntP("sample-rate", "s", config.DefaultSampleRate,
		"Sample rate in Hertz")
	rootCmd.PersistentFlags().IntP("channels", "c", config.DefaultChannels,
		"Number of input channels")
	rootCmd.PersistentFlags().BoolP("low-latency", "l", false,
		"Use low latency capture for real-time processing")

	rootCmd.PersistentFlags().Int("fft-size", config.DefaultFFTSize,
		"Transform size, must be a power of two")
	rootCmd.PersistentFlags().IntP("bands", "b", config.DefaultBands,
		"Number of log-spaced frequency bands")
	rootCmd.PersistentFlags().Float64("frame-rate", config.DefaultFrameRate,
		"Analysis frames per second")
	rootCmd.PersistentFlags().Float64("sensitivity", config.DefaultSensitivity,
		"Onset detection sensitivity")
	rootCmd.PersistentFlags().String("window", config.DefaultWindowName,
		"FFT window function (hann, hamming, blackman, blackman-nuttall, nuttall, lanczos)")
	rootCmd.PersistentFlags().Bool("accel", false,
		"Run spectra on the parallel compute pool")

	rootCmd.PersistentFlags().String("listen-addr", config.DefaultListenAddr,
		"WebSocket listen address for the listen command")

	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	if cfg == nil {
		// Root invoked without a subcommand: help was printed.
		return config.Default(), nil
	}
	return cfg, nil
}

// overlayFlags copies explicitly set flag values onto cfg, so flags win
// over both the YAML file and environment overrides.
func overlayFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("device") {
		cfg.Audio.InputDevice, _ = flags.GetInt("device")
	}
	if flags.Changed("sample-rate") {
		cfg.Audio.SampleRate, _ = flags.GetInt("sample-rate")
	}
	if flags.Changed("channels") {
		cfg.Audio.Channels, _ = flags.GetInt("channels")
	}
	if flags.Changed("low-latency") {
		cfg.Audio.LowLatency, _ = flags.GetBool("low-latency")
	}
	if flags.Changed("fft-size") {
		cfg.Analysis.FFTSize, _ = flags.GetInt("fft-size")
	}
	if flags.Changed("bands") {
		cfg.Analysis.Bands, _ = flags.GetInt("bands")
	}
	if flags.Changed("frame-rate") {
		cfg.Analysis.FrameRate, _ = flags.GetFloat64("frame-rate")
	}
	if flags.Changed("sensitivity") {
		cfg.Analysis.Sensitivity, _ = flags.GetFloat64("sensitivity")
	}
	if flags.Changed("window") {
		cfg.Analysis.Window, _ = flags.GetString("window")
	}
	if flags.Changed("accel") {
		cfg.Analysis.Accelerate, _ = flags.GetBool("accel")
	}
	if flags.Changed("listen-addr") {
		cfg.Transport.ListenAddr, _ = flags.GetString("listen-addr")
	}
	if flags.Changed("output") {
		cfg.OutputFile, _ = flags.GetString("output")
	}
}
