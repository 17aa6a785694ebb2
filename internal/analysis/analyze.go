// SPDX-License-Identifier: MIT
package analysis

import "audioviz/internal/log"

// Full-buffer analysis parameters.
const (
	// analysisFFTSize is the transform size used for per-frame band
	// spectra. Frames shorter than this are zero-padded on the right.
	analysisFFTSize = 2048

	// DefaultSensitivity is the onset threshold used by AnalyzeAudio.
	DefaultSensitivity = 0.5
)

// AudioAnalysis is the complete per-frame analysis of an audio buffer,
// the artifact consumed by the rendering stage. Immutable once
// returned. Spectrum and RMS have one entry per frame; every Spectrum
// row has NumBands values pre-normalized to 0.0..1.0, and beat times
// are seconds from the start of the buffer.
type AudioAnalysis struct {
	Duration   float64     `json:"duration"`
	SampleRate int         `json:"sample_rate"`
	FrameRate  float64     `json:"frame_rate"`
	NumBands   int         `json:"num_bands"`
	BPM        float64     `json:"bpm"`
	Beats      []BeatInfo  `json:"beats"`
	RMS        []float64   `json:"rms"`
	Spectrum   [][]float64 `json:"spectrum"`
}

// AnalyzeAudio performs a complete analysis of mono samples: beats and
// tempo over the whole buffer, then per-frame RMS and band spectra at
// the given frame rate. Uses the sequential kernel at the fixed
// analysis transform size and the default sensitivity.
func AnalyzeAudio(samples []float64, sampleRate int, frameRate float64, numBands int) (*AudioAnalysis, error) {
	analyzer, err := NewSequential(analysisFFTSize)
	if err != nil {
		return nil, err
	}
	return AnalyzeAudioWith(analyzer, samples, sampleRate, frameRate, numBands, DefaultSensitivity)
}

// AnalyzeAudioWith is AnalyzeAudio with an explicit analyzer (so frame
// spectra can run on the parallel pipeline) and onset sensitivity. The
// analyzer's transform size determines the zero-padding length for
// short frames.
func AnalyzeAudioWith(analyzer *Analyzer, samples []float64, sampleRate int, frameRate float64, numBands int, sensitivity float64) (*AudioAnalysis, error) {
	duration := float64(len(samples)) / float64(sampleRate)

	beats := DetectBeats(samples, sampleRate, sensitivity)
	bpm := EstimateBPM(beats)

	fftSize := analyzer.FFTSize()
	samplesPerFrame := int(float64(sampleRate) / frameRate)
	if samplesPerFrame < 1 {
		samplesPerFrame = 1
	}
	numFrames := len(samples) / samplesPerFrame
	if numFrames < 1 {
		numFrames = 1
	}

	log.Debugf("analysis: %d frames at %.1f fps, %d bands, %s kernel",
		numFrames, frameRate, numBands, analyzer.Kind())

	rms := make([]float64, 0, numFrames)
	spectrum := make([][]float64, 0, numFrames)

	// Reused padding buffer for frames shorter than the transform.
	padded := make([]float64, fftSize)

	for i := 0; i < numFrames; i++ {
		start := i * samplesPerFrame
		end := start + samplesPerFrame
		if end > len(samples) {
			end = len(samples)
		}
		frame := samples[start:end]

		rms = append(rms, CalculateRMS(frame))

		// Short frames are padded rather than skipped so every frame
		// yields a row of the same length.
		if len(frame) < fftSize {
			n := copy(padded, frame)
			for j := n; j < fftSize; j++ {
				padded[j] = 0
			}
			frame = padded
		}
		bands, err := analyzer.AnalyzeBands(frame, sampleRate, numBands)
		if err != nil {
			return nil, err
		}
		spectrum = append(spectrum, bands)
	}

	return &AudioAnalysis{
		Duration:   duration,
		SampleRate: sampleRate,
		FrameRate:  frameRate,
		NumBands:   numBands,
		BPM:        bpm,
		Beats:      beats,
		RMS:        rms,
		Spectrum:   spectrum,
	}, nil
}
