// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSampleRate = 44100

func generateSine(freq float64, sampleRate, numSamples int) []float64 {
	samples := make([]float64, numSamples)
	for i := range samples {
		t := float64(i) / float64(sampleRate)
		samples[i] = math.Sin(2 * math.Pi * freq * t)
	}
	return samples
}

func peakBin(spectrum []float64) int {
	peak := 0
	for i, m := range spectrum {
		if m > spectrum[peak] {
			peak = i
		}
	}
	return peak
}

func TestNewSpectrumAnalyzerRejectsBadSizes(t *testing.T) {
	for _, size := range []int{0, 1, 3, 1000, -1024} {
		_, err := NewSpectrumAnalyzer(size)
		require.Error(t, err, "size %d", size)
		var sizeErr *InvalidFFTSizeError
		assert.ErrorAs(t, err, &sizeErr)
		assert.Equal(t, size, sizeErr.Size)
	}
}

func TestSpectrumAnalyzerSizes(t *testing.T) {
	a, err := NewSpectrumAnalyzer(1024)
	require.NoError(t, err)
	assert.Equal(t, 1024, a.FFTSize())
	assert.Equal(t, 512, a.NumBins())
}

func TestSinePeakLocalization(t *testing.T) {
	// For every power-of-two size >= 512, the peak bin of a pure sine
	// must map back to within one bin width of the input frequency.
	for _, fftSize := range []int{512, 1024, 2048, 4096} {
		for _, freq := range []float64{110, 440, 1000, 5000} {
			a, err := NewSpectrumAnalyzer(fftSize)
			require.NoError(t, err)

			samples := generateSine(freq, testSampleRate, fftSize)
			spectrum := a.Analyze(samples)
			require.Len(t, spectrum, fftSize/2)

			binWidth := float64(testSampleRate) / float64(fftSize)
			peakFreq := a.BinToFreq(peakBin(spectrum), testSampleRate)
			assert.InDelta(t, freq, peakFreq, binWidth,
				"fftSize=%d freq=%.0f", fftSize, freq)
		}
	}
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	a, err := NewSpectrumAnalyzer(1024)
	require.NoError(t, err)

	samples := generateSine(440, testSampleRate, 1024)
	first := a.Analyze(samples)
	second := a.Analyze(samples)
	assert.Equal(t, first, second)
}

func TestAnalyzeExactBoundary(t *testing.T) {
	const fftSize = 1024
	a, err := NewSpectrumAnalyzer(fftSize)
	require.NoError(t, err)

	// Exactly N samples succeeds.
	spectrum := a.Analyze(generateSine(440, testSampleRate, fftSize))
	assert.Len(t, spectrum, fftSize/2)

	// N-1 samples is a contract violation; direct kernel use panics.
	assert.Panics(t, func() {
		a.Analyze(generateSine(440, testSampleRate, fftSize-1))
	})
}

func TestAnalyzeDBRange(t *testing.T) {
	a, err := NewSpectrumAnalyzer(2048)
	require.NoError(t, err)

	db := a.AnalyzeDB(generateSine(1000, testSampleRate, 2048))
	for i, v := range db {
		assert.GreaterOrEqual(t, v, -80.0, "bin %d", i)
		assert.Less(t, v, 40.0, "bin %d", i)
	}

	// Silence sits exactly on the floor.
	dbSilent := a.AnalyzeDB(make([]float64, 2048))
	for _, v := range dbSilent {
		assert.Equal(t, -80.0, v)
	}
}

func TestBinFreqConversion(t *testing.T) {
	a, err := NewSpectrumAnalyzer(2048)
	require.NoError(t, err)

	// Nyquist lands at bin N/2.
	assert.Equal(t, 1024, a.FreqToBin(testSampleRate/2, testSampleRate))

	// Round trip within one bin width.
	bin := a.FreqToBin(1000, testSampleRate)
	freq := a.BinToFreq(bin, testSampleRate)
	assert.InDelta(t, 1000, freq, float64(testSampleRate)/2048)

	assert.Equal(t, 0.0, a.BinToFreq(0, testSampleRate))
}

func TestParseWindowFunc(t *testing.T) {
	for name, want := range map[string]WindowFunc{
		"hann":     Hann,
		"Hanning":  Hann,
		"HAMMING":  Hamming,
		"blackman": Blackman,
		"nuttall":  Nuttall,
	} {
		got, ok := ParseWindowFunc(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	got, ok := ParseWindowFunc("rectangular")
	assert.False(t, ok)
	assert.Equal(t, Hann, got)
}

func TestWindowedAnalyzerStillFindsPeak(t *testing.T) {
	a, err := NewSpectrumAnalyzerWindowed(2048, Blackman)
	require.NoError(t, err)

	spectrum := a.Analyze(generateSine(440, testSampleRate, 2048))
	peakFreq := a.BinToFreq(peakBin(spectrum), testSampleRate)
	assert.InDelta(t, 440, peakFreq, 2*float64(testSampleRate)/2048)
}

func TestAnalyzeAllocations(t *testing.T) {
	a, err := NewSpectrumAnalyzer(1024)
	require.NoError(t, err)
	samples := generateSine(440, testSampleRate, 1024)

	// The workspace is reused; only the result slice is allocated.
	allocs := testing.AllocsPerRun(100, func() {
		_ = a.Analyze(samples)
	})
	assert.LessOrEqual(t, allocs, 1.0)
}

func BenchmarkSequentialAnalyze(b *testing.B) {
	a, err := NewSpectrumAnalyzer(2048)
	if err != nil {
		b.Fatal(err)
	}
	samples := generateSine(440, testSampleRate, 2048)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = a.Analyze(samples)
	}
}
