// SPDX-License-Identifier: MIT
package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSine(t *testing.T) {
	const sampleRate = 44100
	sine := GenerateSine(440, sampleRate, 0.5, 0.8)
	require.Len(t, sine, sampleRate/2)

	var peak float64
	for _, s := range sine {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	assert.InDelta(t, 0.8, peak, 0.01)
	assert.InDelta(t, 0.0, sine[0], 1e-12)
}

func TestGenerateWhiteNoise(t *testing.T) {
	noise := GenerateWhiteNoise(44100, 0.25, 0.5, 12345)
	require.Len(t, noise, 44100/4)

	var sum float64
	for _, s := range noise {
		assert.LessOrEqual(t, math.Abs(s), 0.5+1e-9)
		sum += s
	}
	// Mean of bounded uniform noise stays near zero.
	assert.InDelta(t, 0.0, sum/float64(len(noise)), 0.05)
}

func TestGenerateClickTrack(t *testing.T) {
	const sampleRate = 44100
	clicks := GenerateClickTrack(120, sampleRate, 2.0, 1000)
	require.Len(t, clicks, sampleRate*2)

	// At 120 BPM clicks fall every 0.5 s; the stretch between clicks
	// must be silent.
	quiet := clicks[sampleRate/4 : sampleRate/4+1000]
	for _, s := range quiet {
		assert.Equal(t, 0.0, s)
	}

	// Each click carries energy at its onset.
	var clickPeak float64
	for _, s := range clicks[:sampleRate/100] {
		if a := math.Abs(s); a > clickPeak {
			clickPeak = a
		}
	}
	assert.Greater(t, clickPeak, 0.1)
}

func TestGenerateKickDecays(t *testing.T) {
	const sampleRate = 44100
	kick := GenerateKick(sampleRate)
	require.NotEmpty(t, kick)

	head := peakAbs(kick[:len(kick)/4])
	tail := peakAbs(kick[3*len(kick)/4:])
	assert.Greater(t, head, tail)
}

func TestGenerateTestBeatNormalized(t *testing.T) {
	const sampleRate = 44100
	beat := GenerateTestBeat(120, sampleRate, 2.0)
	require.Len(t, beat, sampleRate*2)

	assert.LessOrEqual(t, peakAbs(beat), 1.0+1e-9)
	assert.Greater(t, peakAbs(beat), 0.1)
}

func peakAbs(samples []float64) float64 {
	var peak float64
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	return peak
}
