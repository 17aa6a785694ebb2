// SPDX-License-Identifier: MIT
package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSequentialAnalyzer(t *testing.T) {
	a, err := NewSequential(1024)
	require.NoError(t, err)
	assert.Equal(t, KindSequential, a.Kind())
	assert.Equal(t, 1024, a.FFTSize())
	assert.Equal(t, 512, a.NumBins())

	spectrum, err := a.Analyze(generateSine(440, testSampleRate, 1024))
	require.NoError(t, err)
	assert.Len(t, spectrum, 512)
}

func TestNewParallelAnalyzerKind(t *testing.T) {
	ctx := newTestContext(t)
	a, err := NewParallel(ctx, 1024)
	require.NoError(t, err)
	assert.Equal(t, KindParallel, a.Kind())

	spectrum, err := a.Analyze(generateSine(440, testSampleRate, 1024))
	require.NoError(t, err)
	assert.Len(t, spectrum, 512)
}

func TestFallbackWithoutContext(t *testing.T) {
	// No accelerator offered: silent degradation to sequential.
	a, err := NewWithFallback(nil, 1024)
	require.NoError(t, err)
	assert.Equal(t, KindSequential, a.Kind())
}

func TestFallbackWithContext(t *testing.T) {
	ctx := newTestContext(t)
	a, err := NewWithFallback(ctx, 1024)
	require.NoError(t, err)
	assert.Equal(t, KindParallel, a.Kind())
}

func TestFallbackWithClosedContext(t *testing.T) {
	// A context that fails parallel dispatch still constructs the
	// pipeline, but a context rejected at construction degrades
	// silently. Closed contexts construct fine (buffers are host
	// allocations), so exercise the nil path plus invalid size.
	_, err := NewWithFallback(nil, 1000)
	var sizeErr *InvalidFFTSizeError
	assert.ErrorAs(t, err, &sizeErr, "invalid size must not be swallowed by fallback")
}

func TestAnalyzerErrorInsteadOfPanic(t *testing.T) {
	a, err := NewSequential(1024)
	require.NoError(t, err)

	// The unified interface reports undersized input as a typed error
	// where direct kernel use would panic.
	_, err = a.Analyze(make([]float64, 500))
	var insufErr *InsufficientSamplesError
	require.ErrorAs(t, err, &insufErr)
	assert.Equal(t, 1024, insufErr.Needed)
	assert.Equal(t, 500, insufErr.Got)

	_, err = a.AnalyzeBands(make([]float64, 500), testSampleRate, 16)
	assert.ErrorAs(t, err, &insufErr)
}

func TestAnalyzerBandCeiling(t *testing.T) {
	a, err := NewSequential(1024)
	require.NoError(t, err)

	samples := make([]float64, 1024)
	_, err = a.AnalyzeBands(samples, testSampleRate, MaxBands+1)
	var bandsErr *TooManyBandsError
	assert.ErrorAs(t, err, &bandsErr)
}

func TestKindsAgreeThroughUnifiedInterface(t *testing.T) {
	ctx := newTestContext(t)

	seq, err := NewSequential(2048)
	require.NoError(t, err)
	par, err := NewParallel(ctx, 2048)
	require.NoError(t, err)

	samples := generateSine(880, testSampleRate, 2048)

	seqSpec, err := seq.Analyze(samples)
	require.NoError(t, err)
	parSpec, err := par.Analyze(samples)
	require.NoError(t, err)

	assert.InDelta(t, peakBin(seqSpec), peakBin(parSpec), 5)

	assert.Equal(t, seq.FreqToBin(880, testSampleRate), par.FreqToBin(880, testSampleRate))
	assert.Equal(t, seq.BinToFreq(41, testSampleRate), par.BinToFreq(41, testSampleRate))
}

func TestSharedContextAcrossAnalyzers(t *testing.T) {
	ctx := newTestContext(t)

	a1, err := NewParallel(ctx, 512)
	require.NoError(t, err)
	a2, err := NewParallel(ctx, 1024)
	require.NoError(t, err)

	// Each instance drains its own submissions, so interleaved calls
	// on a shared context stay correct.
	for i := 0; i < 4; i++ {
		s1, err := a1.Analyze(generateSine(440, testSampleRate, 512))
		require.NoError(t, err)
		s2, err := a2.Analyze(generateSine(440, testSampleRate, 1024))
		require.NoError(t, err)
		assert.Len(t, s1, 256)
		assert.Len(t, s2, 512)
	}
}
