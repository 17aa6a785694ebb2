// SPDX-License-Identifier: MIT
package analysis

import "math"

// minBandFreq is the lower edge of the band range. Perceptual bands
// start at 20 Hz, the conventional lower limit of hearing.
const minBandFreq = 20.0

// ReduceBands groups a magnitude spectrum into numBands bands of equal
// log-frequency width between 20 Hz and Nyquist. The value of each band
// is the arithmetic mean of the magnitudes in its bin range, or the
// single magnitude at the low bin when the range collapses. Both FFT
// kernels share this as their band-reduction tail.
//
// The result is not normalized; see NormalizeBands.
func ReduceBands(spectrum []float64, fftSize, sampleRate, numBands int) []float64 {
	bands := make([]float64, numBands)
	for i := range bands {
		bands[i] = bandValue(spectrum, fftSize, sampleRate, numBands, i)
	}
	return bands
}

// bandValue computes band i of numBands. It is a pure function of its
// arguments, which lets the parallel pipeline evaluate bands
// independently per grid index.
func bandValue(spectrum []float64, fftSize, sampleRate, numBands, i int) float64 {
	numBins := len(spectrum)
	logMin := math.Log(minBandFreq)
	logMax := math.Log(float64(sampleRate) / 2)

	t0 := float64(i) / float64(numBands)
	t1 := float64(i+1) / float64(numBands)

	freqLow := math.Exp(logMin + t0*(logMax-logMin))
	freqHigh := math.Exp(logMin + t1*(logMax-logMin))

	binLow := freqToBin(freqLow, fftSize, sampleRate)
	if binLow > numBins-1 {
		binLow = numBins - 1
	}
	binHigh := freqToBin(freqHigh, fftSize, sampleRate)
	if binHigh > numBins {
		binHigh = numBins
	}

	if binHigh > binLow {
		var sum float64
		for b := binLow; b < binHigh; b++ {
			sum += spectrum[b]
		}
		return sum / float64(binHigh-binLow)
	}
	return spectrum[binLow]
}

// NormalizeBands divides the band sequence by its own maximum so every
// value lies in 0.0..1.0. A no-op when the maximum is zero.
func NormalizeBands(bands []float64) {
	var max float64
	for _, b := range bands {
		if b > max {
			max = b
		}
	}
	if max > 0 {
		for i := range bands {
			bands[i] /= max
		}
	}
}
