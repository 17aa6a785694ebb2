// SPDX-License-Identifier: MIT
/*
Package audio provides the sample-buffer boundary of the analysis core:
WAV file loading, synthetic signal generation for tests and demos, and
real-time capture through PortAudio.
*/
package audio

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// AudioData holds decoded audio: interleaved samples normalized to
// -1.0..1.0.
type AudioData struct {
	Samples    []float64
	SampleRate int
	Channels   int
}

// Duration returns the length of the audio in seconds.
func (d *AudioData) Duration() float64 {
	if d.SampleRate == 0 || d.Channels == 0 {
		return 0
	}
	return float64(len(d.Samples)) / (float64(d.SampleRate) * float64(d.Channels))
}

// NumFrames returns the number of sample frames (samples per channel).
func (d *AudioData) NumFrames() int {
	if d.Channels == 0 {
		return 0
	}
	return len(d.Samples) / d.Channels
}

// ToMono reduces the interleaved samples to a single channel by
// arithmetic mean across channels. Analysis always runs on mono input.
func (d *AudioData) ToMono() []float64 {
	if d.Channels == 1 {
		out := make([]float64, len(d.Samples))
		copy(out, d.Samples)
		return out
	}

	frames := d.NumFrames()
	out := make([]float64, frames)
	for f := 0; f < frames; f++ {
		var sum float64
		for c := 0; c < d.Channels; c++ {
			sum += d.Samples[f*d.Channels+c]
		}
		out[f] = sum / float64(d.Channels)
	}
	return out
}

// LoadWAV decodes a WAV file into normalized float samples. Compressed
// formats are out of scope; the loader stands in for the external
// decoding collaborator.
func LoadWAV(path string) (*AudioData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audio: open %s: %w", path, err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("audio: %s is not a valid WAV file", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("audio: decode %s: %w", path, err)
	}

	bitDepth := int(decoder.BitDepth)
	if buf.SourceBitDepth != 0 {
		bitDepth = buf.SourceBitDepth
	}
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := float64(int64(1) << (bitDepth - 1))

	samples := make([]float64, len(buf.Data))
	for i, s := range buf.Data {
		samples[i] = float64(s) / scale
	}

	return &AudioData{
		Samples:    samples,
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
	}, nil
}
