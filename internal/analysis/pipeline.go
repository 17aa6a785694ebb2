// SPDX-License-Identifier: MIT
package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"audioviz/internal/accel"
	"audioviz/pkg/bitint"
)

// MaxBands is the fixed capacity of the pipeline's band buffer, and the
// ceiling on AnalyzeBands requests.
const MaxBands = 2048

// ParallelAnalyzer computes magnitude spectra on a shared compute
// context as an explicit five-stage pipeline: window, bit-reversal
// permutation, log2(N) butterfly passes, magnitude extraction, and
// optionally log-band reduction. Each stage is a separate dispatch
// because a pass must observe every write of the pass before it; the
// dispatch boundary is the only ordering barrier the context provides.
//
// The butterfly passes ping-pong between the two complex buffers —
// in-place parallel butterflies would race across groups — and the
// settled result is always copied into buffer A so magnitude extraction
// reads from a fixed location.
//
// Instances own their buffers exclusively and are not safe for
// concurrent use; the context may be shared.
type ParallelAnalyzer struct {
	ctx       *accel.Context
	fftSize   int
	numStages int
	norm      float64

	window  []float64
	bitrev  []int
	samples []float64

	complexA  []complex128
	complexB  []complex128
	magnitude []float64
	bands     []float64
	staging   []float64
}

// NewParallelAnalyzer creates a parallel kernel on the given context.
// fftSize must be a power of 2 and at least 2. All device-side buffers
// are allocated once here and reused across calls.
func NewParallelAnalyzer(ctx *accel.Context, fftSize int) (*ParallelAnalyzer, error) {
	if fftSize < 2 || !bitint.IsPowerOfTwo(fftSize) {
		return nil, &InvalidFFTSizeError{Size: fftSize}
	}
	if ctx == nil {
		return nil, &BackendError{Op: "init", Err: errors.New("nil compute context")}
	}

	numStages := bitint.Log2(fftSize)
	bitrev := make([]int, fftSize)
	for i := range bitrev {
		bitrev[i] = bitint.Reverse(i, numStages)
	}

	// Staging serves both readback paths: N/2 magnitudes or up to
	// MaxBands band values.
	stagingLen := fftSize / 2
	if stagingLen < MaxBands {
		stagingLen = MaxBands
	}

	return &ParallelAnalyzer{
		ctx:       ctx,
		fftSize:   fftSize,
		numStages: numStages,
		norm:      math.Sqrt(float64(fftSize)),
		window:    windowCoefficients(fftSize, Hann),
		bitrev:    bitrev,
		samples:   make([]float64, fftSize),
		complexA:  make([]complex128, fftSize),
		complexB:  make([]complex128, fftSize),
		magnitude: make([]float64, fftSize/2),
		bands:     make([]float64, MaxBands),
		staging:   make([]float64, stagingLen),
	}, nil
}

// FFTSize returns the transform size.
func (p *ParallelAnalyzer) FFTSize() int {
	return p.fftSize
}

// NumBins returns the number of output frequency bins (fftSize / 2).
func (p *ParallelAnalyzer) NumBins() int {
	return p.fftSize / 2
}

// Analyze computes the magnitude spectrum of the first FFTSize()
// samples through the four compute stages. Blocks until the result has
// been copied back; the returned slice is an independent copy.
func (p *ParallelAnalyzer) Analyze(samples []float64) ([]float64, error) {
	if len(samples) < p.fftSize {
		return nil, &InsufficientSamplesError{Needed: p.fftSize, Got: len(samples)}
	}

	copy(p.samples, samples[:p.fftSize])

	if err := p.dispatchWindow(); err != nil {
		return nil, err
	}
	if err := p.dispatchBitReverse(); err != nil {
		return nil, err
	}
	if err := p.runButterflyStages(); err != nil {
		return nil, err
	}
	if err := p.dispatchMagnitude(); err != nil {
		return nil, err
	}

	return p.readStaging(p.magnitude, p.fftSize/2), nil
}

// AnalyzeBands computes the log-band spectrum on the compute context,
// running band reduction as a fifth stage over the magnitude buffer.
// Normalization to 0.0..1.0 happens after readback.
func (p *ParallelAnalyzer) AnalyzeBands(samples []float64, sampleRate, numBands int) ([]float64, error) {
	if len(samples) < p.fftSize {
		return nil, &InsufficientSamplesError{Needed: p.fftSize, Got: len(samples)}
	}
	if numBands > MaxBands {
		return nil, &TooManyBandsError{Max: MaxBands, Requested: numBands}
	}
	if numBands < 0 {
		numBands = 0
	}

	copy(p.samples, samples[:p.fftSize])

	if err := p.dispatchWindow(); err != nil {
		return nil, err
	}
	if err := p.dispatchBitReverse(); err != nil {
		return nil, err
	}
	if err := p.runButterflyStages(); err != nil {
		return nil, err
	}
	if err := p.dispatchMagnitude(); err != nil {
		return nil, err
	}
	if err := p.dispatchBands(sampleRate, numBands); err != nil {
		return nil, err
	}

	out := p.readStaging(p.bands, numBands)
	NormalizeBands(out)
	return out, nil
}

// BinToFreq returns the center frequency in Hz for a bin index.
func (p *ParallelAnalyzer) BinToFreq(bin, sampleRate int) float64 {
	return binToFreq(bin, p.fftSize, sampleRate)
}

// FreqToBin returns the bin index for a frequency in Hz.
func (p *ParallelAnalyzer) FreqToBin(freq float64, sampleRate int) int {
	return freqToBin(freq, p.fftSize, sampleRate)
}

// Stage 1: multiply samples by the window, write into complex buffer A
// with zero imaginary part. One invocation per sample.
func (p *ParallelAnalyzer) dispatchWindow() error {
	err := p.ctx.Dispatch(p.fftSize, func(i int) {
		p.complexA[i] = complex(p.samples[i]*p.window[i], 0)
	})
	if err != nil {
		return &BackendError{Op: "window", Err: err}
	}
	return nil
}

// Stage 2: permute A into B in bit-reversed order, the input ordering
// the decimation-in-time butterfly network assumes.
func (p *ParallelAnalyzer) dispatchBitReverse() error {
	err := p.ctx.Dispatch(p.fftSize, func(i int) {
		p.complexB[i] = p.complexA[p.bitrev[i]]
	})
	if err != nil {
		return &BackendError{Op: "bit-reverse", Err: err}
	}
	return nil
}

// Stage 3: log2(N) butterfly passes, one dispatch each. A pass may only
// start once the previous pass's writes are visible, which the dispatch
// barrier guarantees; fusing passes into one dispatch would race.
// Passes alternate read/write between B and A starting from B, and if
// the last pass lands in B an extra copy settles the result into A.
func (p *ParallelAnalyzer) runButterflyStages() error {
	readFromA := false

	for stage := 0; stage < p.numStages; stage++ {
		in, out := p.complexB, p.complexA
		if readFromA {
			in, out = p.complexA, p.complexB
		}

		half := 1 << stage
		span := half << 1

		err := p.ctx.Dispatch(p.fftSize/2, func(k int) {
			block := k / half
			off := k - block*half
			i := block*span + off
			j := i + half

			// Forward twiddle for this pair within its block.
			w := cmplx.Exp(complex(0, -2*math.Pi*float64(off)/float64(span)))
			t := w * in[j]
			out[i] = in[i] + t
			out[j] = in[i] - t
		})
		if err != nil {
			return &BackendError{Op: "butterfly", Err: err}
		}

		readFromA = !readFromA
	}

	// readFromA reports which buffer the next pass would read, i.e.
	// where the last pass wrote. Settle into A when it wrote B.
	if !readFromA {
		copy(p.complexA, p.complexB)
	}
	return nil
}

// Stage 4: |c|/sqrt(N) for the first N/2 entries, one invocation per
// bin.
func (p *ParallelAnalyzer) dispatchMagnitude() error {
	err := p.ctx.Dispatch(p.fftSize/2, func(i int) {
		p.magnitude[i] = cmplx.Abs(p.complexA[i]) / p.norm
	})
	if err != nil {
		return &BackendError{Op: "magnitude", Err: err}
	}
	return nil
}

// Stage 5 (AnalyzeBands only): one invocation per band, reading the
// magnitude buffer.
func (p *ParallelAnalyzer) dispatchBands(sampleRate, numBands int) error {
	spectrum := p.magnitude
	err := p.ctx.Dispatch(numBands, func(i int) {
		p.bands[i] = bandValue(spectrum, p.fftSize, sampleRate, numBands, i)
	})
	if err != nil {
		return &BackendError{Op: "bands", Err: err}
	}
	return nil
}

// readStaging copies the first count results into the staging buffer
// and returns an independent copy, so the caller's slice survives the
// analyzer's next call.
func (p *ParallelAnalyzer) readStaging(src []float64, count int) []float64 {
	copy(p.staging[:count], src[:count])
	out := make([]float64, count)
	copy(out, p.staging[:count])
	return out
}
