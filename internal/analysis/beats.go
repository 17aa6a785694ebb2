// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
	"sort"
)

// Onset detection parameters. The 1024/512 window/hop pair gives
// ~11 ms hops at 44.1 kHz.
const (
	beatFFTSize = 1024
	beatHopSize = 512

	// Bass range summed for onset energy.
	bassLowFreq  = 20.0
	bassHighFreq = 200.0

	// Moving-average context, in hops on each side (~100 ms).
	beatAvgWindow = 8

	// Minimum spacing between accepted beats, in seconds.
	minBeatSpacing = 0.2
)

// BeatInfo describes one detected beat.
type BeatInfo struct {
	// Time of the beat in seconds from the start of the buffer.
	Time float64 `json:"time"`
	// Strength is the detection confidence in 0.0..1.0.
	Strength float64 `json:"strength"`
}

// CalculateRMS returns the root mean square energy of the samples, a
// perceptually better loudness measure than peak level. Returns 0 for
// an empty slice.
func CalculateRMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sumSq float64
	for _, s := range samples {
		sumSq += s * s
	}
	return math.Sqrt(sumSq / float64(len(samples)))
}

// DetectBeats finds beats using energy-based onset detection: bass-band
// energy per hop, compared to a local moving average, with strict-peak
// and minimum-spacing rules. sensitivity is the fraction above the
// local average an onset must reach (0.5 means 50% above).
//
// The returned sequence is time-ascending and never contains two beats
// closer than the minimum spacing.
func DetectBeats(samples []float64, sampleRate int, sensitivity float64) []BeatInfo {
	if len(samples) < beatFFTSize {
		return nil
	}

	analyzer, err := NewSpectrumAnalyzer(beatFFTSize)
	if err != nil {
		// beatFFTSize is a compile-time power of two.
		panic(err)
	}

	numWindows := (len(samples)-beatFFTSize)/beatHopSize + 1

	bassLow := analyzer.FreqToBin(bassLowFreq, sampleRate)
	bassHigh := analyzer.FreqToBin(bassHighFreq, sampleRate)

	// Squared-magnitude energy in the bass range, one value per hop.
	bassEnergy := make([]float64, 0, numWindows)
	for i := 0; i < numWindows; i++ {
		start := i * beatHopSize
		spectrum := analyzer.Analyze(samples[start : start+beatFFTSize])

		high := bassHigh
		if high > len(spectrum) {
			high = len(spectrum)
		}
		var energy float64
		for b := bassLow; b < high; b++ {
			energy += spectrum[b] * spectrum[b]
		}
		bassEnergy = append(bassEnergy, energy)
	}

	var maxEnergy float64
	for _, e := range bassEnergy {
		if e > maxEnergy {
			maxEnergy = e
		}
	}
	if maxEnergy > 0 {
		for i := range bassEnergy {
			bassEnergy[i] /= maxEnergy
		}
	}

	localAvg := make([]float64, len(bassEnergy))
	for i := range bassEnergy {
		start := i - beatAvgWindow
		if start < 0 {
			start = 0
		}
		end := i + beatAvgWindow + 1
		if end > len(bassEnergy) {
			end = len(bassEnergy)
		}
		var sum float64
		for _, e := range bassEnergy[start:end] {
			sum += e
		}
		localAvg[i] = sum / float64(end-start)
	}

	threshold := 1.0 + sensitivity
	minSpacing := int(float64(sampleRate) / float64(beatHopSize) * minBeatSpacing)

	var beats []BeatInfo
	lastBeat := -1

	for i := 1; i < len(bassEnergy)-1; i++ {
		isPeak := bassEnergy[i] > bassEnergy[i-1] && bassEnergy[i] > bassEnergy[i+1]
		exceeds := bassEnergy[i] > localAvg[i]*threshold
		spaced := lastBeat < 0 || i-lastBeat >= minSpacing

		if isPeak && exceeds && spaced {
			beats = append(beats, BeatInfo{
				Time:     float64(i*beatHopSize) / float64(sampleRate),
				Strength: math.Min(bassEnergy[i]/math.Max(localAvg[i], 0.01)-1, 1.0),
			})
			lastBeat = i
		}
	}

	return beats
}

// EstimateBPM estimates tempo from detected beats: the median of
// consecutive-beat intervals in (0.2 s, 2.0 s), converted to beats per
// minute, with a single octave fold applied when the estimate falls
// outside 60..200 BPM (doubled below, halved above).
//
// The fold is a heuristic correction for tempo octave errors, applied
// exactly once; callers should not assume precision beyond it. Returns
// 0 when fewer than two beats or no usable intervals exist.
func EstimateBPM(beats []BeatInfo) float64 {
	if len(beats) < 2 {
		return 0
	}

	intervals := make([]float64, 0, len(beats)-1)
	for i := 1; i < len(beats); i++ {
		delta := beats[i].Time - beats[i-1].Time
		if delta > 0.2 && delta < 2.0 {
			intervals = append(intervals, delta)
		}
	}
	if len(intervals) == 0 {
		return 0
	}

	sort.Float64s(intervals)
	median := intervals[len(intervals)/2]

	bpm := 60.0 / median
	switch {
	case bpm < 60:
		return bpm * 2
	case bpm > 200:
		return bpm / 2
	default:
		return bpm
	}
}
