// SPDX-License-Identifier: MIT
package analysis

import (
	"audioviz/internal/accel"
	"audioviz/internal/log"
)

// Kind identifies which kernel backs an Analyzer. The set of backends
// is closed: spectra come from either the sequential kernel or the
// parallel pipeline.
type Kind int

const (
	KindSequential Kind = iota
	KindParallel
)

func (k Kind) String() string {
	switch k {
	case KindSequential:
		return "sequential"
	case KindParallel:
		return "parallel"
	default:
		return "unknown"
	}
}

// Analyzer exposes Analyze and AnalyzeBands uniformly over the two FFT
// kernels. It is a tagged variant rather than an interface because the
// backend set is fixed at compile time; only the selection happens at
// runtime.
//
// Unlike direct use of SpectrumAnalyzer, undersized input through this
// interface is reported as an *InsufficientSamplesError, never a panic.
type Analyzer struct {
	kind Kind
	seq  *SpectrumAnalyzer
	par  *ParallelAnalyzer
}

// NewSequential creates an analyzer backed by the sequential kernel.
func NewSequential(fftSize int) (*Analyzer, error) {
	seq, err := NewSpectrumAnalyzer(fftSize)
	if err != nil {
		return nil, err
	}
	return &Analyzer{kind: KindSequential, seq: seq}, nil
}

// NewSequentialWindowed creates a sequential analyzer with a specific
// window function. The parallel pipeline always windows with Hann.
func NewSequentialWindowed(fftSize int, wf WindowFunc) (*Analyzer, error) {
	seq, err := NewSpectrumAnalyzerWindowed(fftSize, wf)
	if err != nil {
		return nil, err
	}
	return &Analyzer{kind: KindSequential, seq: seq}, nil
}

// NewParallel creates an analyzer backed by the parallel pipeline on
// the given compute context.
func NewParallel(ctx *accel.Context, fftSize int) (*Analyzer, error) {
	par, err := NewParallelAnalyzer(ctx, fftSize)
	if err != nil {
		return nil, err
	}
	return &Analyzer{kind: KindParallel, par: par}, nil
}

// NewWithFallback creates a parallel analyzer when ctx is non-nil and
// construction succeeds, and otherwise falls back to the sequential
// kernel. The fallback is silent by design: the caller only offered an
// optional accelerator. The one error still possible is an invalid
// transform size, which no backend can accept.
func NewWithFallback(ctx *accel.Context, fftSize int) (*Analyzer, error) {
	if ctx != nil {
		a, err := NewParallel(ctx, fftSize)
		if err == nil {
			return a, nil
		}
		if _, ok := err.(*InvalidFFTSizeError); ok {
			return nil, err
		}
		log.Debugf("analysis: parallel kernel unavailable, using sequential: %v", err)
	}
	return NewSequential(fftSize)
}

// Kind returns which kernel backs this analyzer.
func (a *Analyzer) Kind() Kind {
	return a.kind
}

// FFTSize returns the transform size.
func (a *Analyzer) FFTSize() int {
	if a.kind == KindParallel {
		return a.par.FFTSize()
	}
	return a.seq.FFTSize()
}

// NumBins returns the number of output frequency bins (FFTSize / 2).
func (a *Analyzer) NumBins() int {
	return a.FFTSize() / 2
}

// Analyze computes the magnitude spectrum of the first FFTSize()
// samples.
func (a *Analyzer) Analyze(samples []float64) ([]float64, error) {
	if len(samples) < a.FFTSize() {
		return nil, &InsufficientSamplesError{Needed: a.FFTSize(), Got: len(samples)}
	}
	if a.kind == KindParallel {
		return a.par.Analyze(samples)
	}
	return a.seq.Analyze(samples), nil
}

// AnalyzeBands computes the normalized log-band spectrum.
func (a *Analyzer) AnalyzeBands(samples []float64, sampleRate, numBands int) ([]float64, error) {
	if len(samples) < a.FFTSize() {
		return nil, &InsufficientSamplesError{Needed: a.FFTSize(), Got: len(samples)}
	}
	if numBands > MaxBands {
		return nil, &TooManyBandsError{Max: MaxBands, Requested: numBands}
	}
	if a.kind == KindParallel {
		return a.par.AnalyzeBands(samples, sampleRate, numBands)
	}
	return a.seq.AnalyzeBands(samples, sampleRate, numBands), nil
}

// BinToFreq returns the center frequency in Hz for a bin index.
func (a *Analyzer) BinToFreq(bin, sampleRate int) float64 {
	return binToFreq(bin, a.FFTSize(), sampleRate)
}

// FreqToBin returns the bin index for a frequency in Hz.
func (a *Analyzer) FreqToBin(freq float64, sampleRate int) int {
	return freqToBin(freq, a.FFTSize(), sampleRate)
}
