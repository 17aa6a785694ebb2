// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"audioviz/pkg/bitint"
)

// envPrefix namespaces environment overrides, e.g. AUDIOVIZ_LOG_LEVEL.
const envPrefix = "AUDIOVIZ_"

// Load builds a Config from defaults, then an optional YAML file, then
// environment variables. An empty path skips the file stage.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays AUDIOVIZ_* environment variables onto cfg. Unset or
// malformed values are ignored so a bad shell export cannot brick startup.
func applyEnv(cfg *Config) {
	if v, ok := lookup("DEBUG"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := lookup("INPUT_DEVICE"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Audio.InputDevice = n
		}
	}
	if v, ok := lookup("SAMPLE_RATE"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Audio.SampleRate = n
		}
	}
	if v, ok := lookup("FFT_SIZE"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.FFTSize = n
		}
	}
	if v, ok := lookup("BANDS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.Bands = n
		}
	}
	if v, ok := lookup("LISTEN_ADDR"); ok {
		cfg.Transport.ListenAddr = v
	}
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		return fmt.Errorf("config: sample rate %d outside [%d, %d]",
			c.Audio.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if c.Audio.Channels < 1 {
		return fmt.Errorf("config: channels must be >= 1, got %d", c.Audio.Channels)
	}
	if c.Audio.InputDevice < MinDeviceID {
		return fmt.Errorf("config: input device must be >= %d, got %d",
			MinDeviceID, c.Audio.InputDevice)
	}
	if c.Analysis.FFTSize < 2 || !bitint.IsPowerOfTwo(c.Analysis.FFTSize) {
		return fmt.Errorf("config: fft size must be a power of 2, got %d", c.Analysis.FFTSize)
	}
	if c.Analysis.Bands < 1 {
		return fmt.Errorf("config: bands must be >= 1, got %d", c.Analysis.Bands)
	}
	if c.Analysis.FrameRate <= 0 {
		return fmt.Errorf("config: frame rate must be positive, got %g", c.Analysis.FrameRate)
	}
	if c.Analysis.Sensitivity < 0 {
		return fmt.Errorf("config: sensitivity must be >= 0, got %g", c.Analysis.Sensitivity)
	}
	if c.Transport.ListenAddr == "" {
		return fmt.Errorf("config: listen address must not be empty")
	}
	return nil
}
