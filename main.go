// SPDX-License-Identifier: MIT
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"audioviz/cmd"
	"audioviz/internal/accel"
	"audioviz/internal/analysis"
	"audioviz/internal/audio"
	"audioviz/internal/config"
	"audioviz/internal/log"
	"audioviz/internal/transport"
	"audioviz/pkg/build"
)

func main() {
	cfg, err := cmd.ParseArgs()
	if err != nil {
		log.Fatalf("%v", err)
	}

	if level, ok := log.ParseLevel(cfg.LogLevel); ok {
		log.SetLevel(level)
	}
	if cfg.Debug {
		log.SetLevel(log.LevelDebug)
	}

	info := build.GetInfo()
	log.Debugf("%s %s (%s, %s)", info.Name, info.Version, info.Commit, info.Date)

	switch cfg.Command {
	case "analyze":
		err = runAnalyze(cfg)
	case "listen":
		err = runListen(cfg)
	case "list":
		err = runList()
	default:
		return
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
}

// newAnalyzer builds the spectrum analyzer described by the config,
// attaching a compute pool when acceleration is requested.
func newAnalyzer(cfg *config.Config) (*analysis.Analyzer, func(), error) {
	if cfg.Analysis.Accelerate {
		ctx, err := accel.NewContext()
		if err != nil {
			return nil, nil, err
		}
		analyzer, err := analysis.NewWithFallback(ctx, cfg.Analysis.FFTSize)
		if err != nil {
			ctx.Close()
			return nil, nil, err
		}
		log.Infof("analysis: %s kernel, fft size %d", analyzer.Kind(), analyzer.FFTSize())
		return analyzer, func() { ctx.Close() }, nil
	}

	wf, ok := analysis.ParseWindowFunc(cfg.Analysis.Window)
	if !ok {
		return nil, nil, fmt.Errorf("unknown window function %q", cfg.Analysis.Window)
	}
	analyzer, err := analysis.NewSequentialWindowed(cfg.Analysis.FFTSize, wf)
	if err != nil {
		return nil, nil, err
	}
	return analyzer, func() {}, nil
}

// runAnalyze loads a WAV file, runs the full-buffer analysis, and
// writes the JSON report to the configured output or stdout.
func runAnalyze(cfg *config.Config) error {
	data, err := audio.LoadWAV(cfg.InputFile)
	if err != nil {
		return err
	}
	samples := data.ToMono()
	log.Infof("analyze: %s, %.2fs at %d Hz, %d channel(s)",
		cfg.InputFile, data.Duration(), data.SampleRate, data.Channels)

	analyzer, release, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}
	defer release()

	report, err := analysis.AnalyzeAudioWith(analyzer, samples, data.SampleRate,
		cfg.Analysis.FrameRate, cfg.Analysis.Bands, cfg.Analysis.Sensitivity)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	out = append(out, '\n')

	if cfg.OutputFile != "" {
		if err := os.WriteFile(cfg.OutputFile, out, 0o644); err != nil {
			return err
		}
		log.Infof("analyze: report written to %s (%.1f BPM, %d beats)",
			cfg.OutputFile, report.BPM, len(report.Beats))
		return nil
	}

	_, err = os.Stdout.Write(out)
	return err
}

// runListen captures live audio and streams spectrum frames until
// interrupted.
func runListen(cfg *config.Config) error {
	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()

	analyzer, release, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}
	defer release()

	var sink transport.Transport = transport.NewWebSocketTransport(cfg.Transport.ListenAddr)
	defer sink.Close()

	engine, err := audio.NewEngine(cfg, analyzer, sink)
	if err != nil {
		return err
	}

	if err := engine.Start(); err != nil {
		return err
	}
	log.Infof("listen: streaming on ws://%s/ws, ctrl-c to stop", cfg.Transport.ListenAddr)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	return engine.Stop()
}

// runList prints the available audio devices.
func runList() error {
	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()
	return audio.ListDevices()
}
