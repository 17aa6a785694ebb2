// SPDX-License-Identifier: MIT
//
// Package config holds runtime configuration for the analysis engine,
// assembled from built-in defaults, an optional YAML file, environment
// overrides, and command line flags (in that order of precedence).
package config

// Defaults and limits for the engine configuration.
const (
	DefaultSampleRate   = 44100 // CD-quality audio
	DefaultChannels     = 1     // analysis is mono
	DefaultInputDevice  = MinDeviceID
	DefaultFFTSize      = 2048
	DefaultBands        = 32
	DefaultFrameRate    = 30.0
	DefaultSensitivity  = 0.5
	DefaultListenAddr   = ":8080"
	DefaultGateLevel    = 0.001 // RMS below this skips live analysis
	DefaultLogLevel     = "info"
	DefaultWindowName   = "hann"

	MinDeviceID   = -1 // system default device
	MinSampleRate = 8000
	MaxSampleRate = 192000
)

// Config is the complete runtime configuration.
type Config struct {
	Debug    bool   `yaml:"debug"`
	LogLevel string `yaml:"log_level"`

	Audio     AudioConfig     `yaml:"audio"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Transport TransportConfig `yaml:"transport"`

	// CLI-only fields, never read from YAML.
	Command    string `yaml:"-"` // one-off command to run ("analyze", "listen", "list")
	InputFile  string `yaml:"-"` // WAV path for the analyze command
	OutputFile string `yaml:"-"` // report destination, empty for stdout
}

// AudioConfig holds capture settings for the live engine.
type AudioConfig struct {
	InputDevice int     `yaml:"input_device"` // PortAudio device index, -1 for default
	SampleRate  int     `yaml:"sample_rate"`
	Channels    int     `yaml:"channels"`
	LowLatency  bool    `yaml:"low_latency"`
	GateLevel   float64 `yaml:"gate_level"`
}

// AnalysisConfig holds spectrum and rhythm analysis settings.
type AnalysisConfig struct {
	FFTSize     int     `yaml:"fft_size"`    // transform size, power of two
	Bands       int     `yaml:"bands"`       // log-spaced output bands
	FrameRate   float64 `yaml:"frame_rate"`  // report frames per second
	Sensitivity float64 `yaml:"sensitivity"` // onset threshold fraction
	Window      string  `yaml:"window"`      // FFT window function name
	Accelerate  bool    `yaml:"accelerate"`  // run spectra on the compute pool
}

// TransportConfig holds settings for streaming live results.
type TransportConfig struct {
	ListenAddr string `yaml:"listen_addr"` // WebSocket listen address
}

// Default returns a Config populated with built-in defaults.
func Default() *Config {
	return &Config{
		Debug:    false,
		LogLevel: DefaultLogLevel,
		Audio: AudioConfig{
			InputDevice: DefaultInputDevice,
			SampleRate:  DefaultSampleRate,
			Channels:    DefaultChannels,
			LowLatency:  false,
			GateLevel:   DefaultGateLevel,
		},
		Analysis: AnalysisConfig{
			FFTSize:     DefaultFFTSize,
			Bands:       DefaultBands,
			FrameRate:   DefaultFrameRate,
			Sensitivity: DefaultSensitivity,
			Window:      DefaultWindowName,
			Accelerate:  false,
		},
		Transport: TransportConfig{
			ListenAddr: DefaultListenAddr,
		},
	}
}
