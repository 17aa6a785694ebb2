// SPDX-License-Identifier: MIT
package audio

import "math"

// GenerateSine returns a sine wave at the given frequency and
// amplitude.
func GenerateSine(freq float64, sampleRate int, duration, amplitude float64) []float64 {
	numSamples := int(duration * float64(sampleRate))
	samples := make([]float64, numSamples)
	for i := range samples {
		t := float64(i) / float64(sampleRate)
		samples[i] = amplitude * math.Sin(2*math.Pi*freq*t)
	}
	return samples
}

// GenerateWhiteNoise returns seeded white noise. A fixed linear
// congruential generator keeps output reproducible across runs.
func GenerateWhiteNoise(sampleRate int, duration, amplitude float64, seed uint64) []float64 {
	const (
		lcgMul = 6364136223846793005
		lcgInc = 1442695040888963407
	)
	numSamples := int(duration * float64(sampleRate))
	samples := make([]float64, numSamples)
	state := seed
	for i := range samples {
		state = state*lcgMul + lcgInc
		samples[i] = amplitude * (float64(state)/float64(math.MaxUint64)*2 - 1)
	}
	return samples
}

// GenerateClickTrack returns a metronome signal: 10 ms decaying sine
// bursts at clickFreq spaced by the given tempo.
func GenerateClickTrack(bpm float64, sampleRate int, duration, clickFreq float64) []float64 {
	numSamples := int(duration * float64(sampleRate))
	samplesPerBeat := int(60.0 / bpm * float64(sampleRate))
	clickSamples := sampleRate / 100

	samples := make([]float64, numSamples)
	for pos := 0; pos < numSamples; pos += samplesPerBeat {
		for i := 0; i < clickSamples && pos+i < numSamples; i++ {
			t := float64(i) / float64(sampleRate)
			decay := 1 - float64(i)/float64(clickSamples)
			samples[pos+i] = decay * decay * math.Sin(2*math.Pi*clickFreq*t)
		}
	}
	return samples
}

// GenerateKick returns a single 150 ms bass drum hit: a sine whose
// pitch falls from 150 Hz toward 50 Hz under an exponential amplitude
// envelope.
func GenerateKick(sampleRate int) []float64 {
	numSamples := int(0.15 * float64(sampleRate))
	samples := make([]float64, numSamples)
	for i := range samples {
		t := float64(i) / float64(sampleRate)
		freq := 50 + 100*math.Exp(-t*30)
		amp := math.Exp(-t * 15)
		samples[i] = amp * math.Sin(2*math.Pi*freq*t)
	}
	return samples
}

// GenerateTestBeat returns a 4/4 pattern with kicks on beats 1 and 3
// and a hi-hat on every eighth note, normalized so no sample exceeds
// full scale. Useful for exercising onset detection end to end.
func GenerateTestBeat(bpm float64, sampleRate int, duration float64) []float64 {
	numSamples := int(duration * float64(sampleRate))
	samplesPerBeat := int(60.0 / bpm * float64(sampleRate))
	samplesPer16th := samplesPerBeat / 4

	kick := GenerateKick(sampleRate)
	hihatSamples := sampleRate / 20 // 50ms

	samples := make([]float64, numSamples)
	step := 0
	for pos := 0; pos < numSamples; pos += samplesPer16th {
		if step%8 == 0 || step%8 == 4 {
			for i, s := range kick {
				if pos+i >= numSamples {
					break
				}
				samples[pos+i] += s * 0.8
			}
		}
		if step%2 == 0 {
			for i := 0; i < hihatSamples && pos+i < numSamples; i++ {
				t := float64(i) / float64(sampleRate)
				amp := math.Exp(-t*50) * 0.3
				noise := math.Sin(float64(pos+i) * 12345.67)
				samples[pos+i] += amp * noise
			}
		}
		step++
	}

	var max float64
	for _, s := range samples {
		if a := math.Abs(s); a > max {
			max = a
		}
	}
	if max > 1 {
		for i := range samples {
			samples[i] /= max
		}
	}
	return samples
}
