// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"runtime"
	"time"

	"github.com/gordonklaus/portaudio"

	"audioviz/internal/analysis"
	"audioviz/internal/config"
	"audioviz/internal/log"
	"audioviz/internal/transport"
)

// Engine captures live audio and streams spectrum frames through a
// Transport. The capture callback runs on a dedicated OS thread and
// works entirely out of pre-allocated buffers.
type Engine struct {
	cfg      *config.Config
	analyzer *analysis.Analyzer
	sink     transport.Transport

	inputDevice  *portaudio.DeviceInfo
	inputLatency time.Duration
	inputStream  *portaudio.Stream

	// Capture scratch space, sized at construction.
	inputBuffer []float32 // frames * channels, raw from PortAudio
	mono        []float64 // frames, channel-averaged
	gateLevel   float64   // RMS floor below which frames are skipped
}

// NewEngine resolves the input device and prepares capture buffers.
// One capture buffer is exactly one transform of the analyzer.
func NewEngine(cfg *config.Config, analyzer *analysis.Analyzer, sink transport.Transport) (*Engine, error) {
	inputDevice, err := InputDevice(cfg.Audio.InputDevice)
	if err != nil {
		return nil, err
	}

	frames := analyzer.FFTSize()
	e := &Engine{
		cfg:         cfg,
		analyzer:    analyzer,
		sink:        sink,
		inputDevice: inputDevice,
		inputBuffer: make([]float32, frames*cfg.Audio.Channels),
		mono:        make([]float64, frames),
		gateLevel:   cfg.Audio.GateLevel,
	}

	if cfg.Audio.LowLatency {
		e.inputLatency = inputDevice.DefaultLowInputLatency
	} else {
		e.inputLatency = inputDevice.DefaultHighInputLatency
	}

	log.Infof("audio: using input device %q (%s backend)",
		inputDevice.Name, analyzer.Kind())
	return e, nil
}

// Start opens and starts the capture stream.
func (e *Engine) Start() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: e.cfg.Audio.Channels,
			Device:   e.inputDevice,
			Latency:  e.inputLatency,
		},
		FramesPerBuffer: e.analyzer.FFTSize(),
		SampleRate:      float64(e.cfg.Audio.SampleRate),
	}

	stream, err := portaudio.OpenStream(params, e.processInput)
	if err != nil {
		return fmt.Errorf("audio: open stream: %w", err)
	}
	e.inputStream = stream

	if err := e.inputStream.Start(); err != nil {
		e.inputStream.Close()
		e.inputStream = nil
		return fmt.Errorf("audio: start stream: %w", err)
	}
	return nil
}

// Stop stops and closes the capture stream. Safe to call when not running.
func (e *Engine) Stop() error {
	if e.inputStream == nil {
		return nil
	}
	if err := e.inputStream.Stop(); err != nil {
		return err
	}
	if err := e.inputStream.Close(); err != nil {
		return err
	}
	e.inputStream = nil
	return nil
}

// Close releases the engine. Equivalent to Stop; PortAudio teardown is
// owned by the caller via Terminate.
func (e *Engine) Close() error {
	return e.Stop()
}

// processInput is the capture callback.
// Runs on a locked OS thread; allocation here is limited to the
// analyzer's result slice.
func (e *Engine) processInput(in []float32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	copy(e.inputBuffer, in)
	e.mixToMono(e.inputBuffer)

	rms := analysis.CalculateRMS(e.mono)
	if rms < e.gateLevel {
		return
	}

	bands, err := e.analyzer.AnalyzeBands(e.mono, e.cfg.Audio.SampleRate, e.cfg.Analysis.Bands)
	if err != nil {
		log.Errorf("audio: analyze: %v", err)
		return
	}

	if err := e.sink.Send(transport.Frame{RMS: rms, Bands: bands}); err != nil {
		log.Debugf("audio: send frame: %v", err)
	}
}

// mixToMono averages interleaved channels into the mono scratch buffer.
func (e *Engine) mixToMono(in []float32) {
	ch := e.cfg.Audio.Channels
	if ch == 1 {
		for i := range e.mono {
			if i < len(in) {
				e.mono[i] = float64(in[i])
			} else {
				e.mono[i] = 0
			}
		}
		return
	}
	for i := range e.mono {
		base := i * ch
		if base+ch > len(in) {
			e.mono[i] = 0
			continue
		}
		var sum float64
		for c := 0; c < ch; c++ {
			sum += float64(in[base+c])
		}
		e.mono[i] = sum / float64(ch)
	}
}
