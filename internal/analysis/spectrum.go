// SPDX-License-Identifier: MIT
/*
Package analysis computes frequency-domain and rhythm information from
mono audio sample buffers: magnitude spectra via a sequential or a
parallel FFT kernel behind one interface, log-spaced perceptual bands,
energy-based onset detection with tempo estimation, and a full-buffer
per-frame analysis report for downstream rendering.
*/
package analysis

import (
	"math"
	"math/cmplx"
	"strings"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"audioviz/pkg/bitint"
)

// WindowFunc selects the FFT window function.
type WindowFunc int

const (
	Hann WindowFunc = iota
	Hamming
	Blackman
	BlackmanNuttall
	Nuttall
	Lanczos
)

// ParseWindowFunc converts a name (case-insensitive) to a WindowFunc.
// Unknown names return Hann and false.
func ParseWindowFunc(name string) (WindowFunc, bool) {
	switch strings.ToLower(name) {
	case "hann", "hanning":
		return Hann, true
	case "hamming":
		return Hamming, true
	case "blackman":
		return Blackman, true
	case "blackmannuttall", "blackman-nuttall":
		return BlackmanNuttall, true
	case "nuttall":
		return Nuttall, true
	case "lanczos":
		return Lanczos, true
	default:
		return Hann, false
	}
}

// windowCoefficients returns the coefficient sequence for the given
// window over n points.
func windowCoefficients(n int, wf WindowFunc) []float64 {
	coeffs := make([]float64, n)
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	switch wf {
	case Hamming:
		window.Hamming(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case BlackmanNuttall:
		window.BlackmanNuttall(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	case Lanczos:
		window.Lanczos(coeffs)
	default:
		window.Hann(coeffs)
	}
	return coeffs
}

// spectrumWorkspace holds pre-allocated buffers reused across Analyze
// calls. Never exposed outside the kernel.
type spectrumWorkspace struct {
	input  []float64    // windowed input samples
	coeffs []complex128 // FFT output
	window []float64    // window coefficients, immutable after construction
}

// SpectrumAnalyzer is the sequential FFT kernel. An instance is created
// once per transform size and reused across many Analyze calls; it is
// not safe for concurrent use because the workspace is mutated in
// place.
//
// Used directly, Analyze treats undersized input as a programming error
// and panics; the Analyzer wrapper converts the same condition to an
// InsufficientSamplesError.
type SpectrumAnalyzer struct {
	fftSize   int
	fft       *fourier.FFT
	workspace spectrumWorkspace
}

// NewSpectrumAnalyzer creates a sequential kernel with a Hann window.
// fftSize must be a power of 2 and at least 2.
func NewSpectrumAnalyzer(fftSize int) (*SpectrumAnalyzer, error) {
	return NewSpectrumAnalyzerWindowed(fftSize, Hann)
}

// NewSpectrumAnalyzerWindowed creates a sequential kernel with the
// given window function.
func NewSpectrumAnalyzerWindowed(fftSize int, wf WindowFunc) (*SpectrumAnalyzer, error) {
	if fftSize < 2 || !bitint.IsPowerOfTwo(fftSize) {
		return nil, &InvalidFFTSizeError{Size: fftSize}
	}

	return &SpectrumAnalyzer{
		fftSize: fftSize,
		fft:     fourier.NewFFT(fftSize),
		workspace: spectrumWorkspace{
			input:  make([]float64, fftSize),
			coeffs: make([]complex128, fftSize/2+1),
			window: windowCoefficients(fftSize, wf),
		},
	}, nil
}

// FFTSize returns the transform size.
func (s *SpectrumAnalyzer) FFTSize() int {
	return s.fftSize
}

// NumBins returns the number of output frequency bins (fftSize / 2).
func (s *SpectrumAnalyzer) NumBins() int {
	return s.fftSize / 2
}

// Analyze computes the magnitude spectrum of the first FFTSize()
// samples: Hann-windowed forward FFT, then |c|/sqrt(N) for the first
// N/2 bins (0 Hz up to Nyquist).
//
// Panics if len(samples) < FFTSize(); the contract is the caller's to
// check when using the kernel directly.
func (s *SpectrumAnalyzer) Analyze(samples []float64) []float64 {
	if len(samples) < s.fftSize {
		panic(&InsufficientSamplesError{Needed: s.fftSize, Got: len(samples)})
	}

	for i := 0; i < s.fftSize; i++ {
		s.workspace.input[i] = samples[i] * s.workspace.window[i]
	}

	// The real-input FFT yields fftSize/2+1 coefficients; the first
	// fftSize/2 match the complex-FFT outputs for a real signal.
	s.fft.Coefficients(s.workspace.coeffs, s.workspace.input)

	norm := math.Sqrt(float64(s.fftSize))
	out := make([]float64, s.fftSize/2)
	for i := range out {
		out[i] = cmplx.Abs(s.workspace.coeffs[i]) / norm
	}
	return out
}

// AnalyzeDB computes the spectrum in decibels, 20*log10(mag) clamped to
// a floor of -80 dB.
func (s *SpectrumAnalyzer) AnalyzeDB(samples []float64) []float64 {
	out := s.Analyze(samples)
	for i, mag := range out {
		db := 20 * math.Log10(math.Max(mag, 1e-10))
		out[i] = math.Max(db, -80)
	}
	return out
}

// AnalyzeBands computes the spectrum grouped into numBands log-spaced
// bands, normalized to 0.0..1.0. See ReduceBands for band semantics.
func (s *SpectrumAnalyzer) AnalyzeBands(samples []float64, sampleRate, numBands int) []float64 {
	spectrum := s.Analyze(samples)
	bands := ReduceBands(spectrum, s.fftSize, sampleRate, numBands)
	NormalizeBands(bands)
	return bands
}

// BinToFreq returns the center frequency in Hz for a bin index.
func (s *SpectrumAnalyzer) BinToFreq(bin, sampleRate int) float64 {
	return binToFreq(bin, s.fftSize, sampleRate)
}

// FreqToBin returns the bin index for a frequency in Hz.
func (s *SpectrumAnalyzer) FreqToBin(freq float64, sampleRate int) int {
	return freqToBin(freq, s.fftSize, sampleRate)
}

func binToFreq(bin, fftSize, sampleRate int) float64 {
	return float64(bin) * float64(sampleRate) / float64(fftSize)
}

func freqToBin(freq float64, fftSize, sampleRate int) int {
	return int(math.Round(freq * float64(fftSize) / float64(sampleRate)))
}
