package pyin

import (
	"math"

	"github.com/kjanssen/pitchscribe/algorithms/harmonic"
	"github.com/kjanssen/pitchscribe/algorithms/spectral"
	"github.com/kjanssen/pitchscribe/algorithms/stats"
	"github.com/kjanssen/pitchscribe/algorithms/windowing"
)

// AlternativeDetector generates extra PitchCandidate hypotheses for a
// single frame using several independent, non-probabilistic methods. It
// backs the "shift candidate" and "recalc candidates" editing intents:
// its output is advisory and is never fed into the Viterbi lattice, which
// only ever sees YinCore's own candidates.
type AlternativeDetector struct {
	sampleRate int
	fft        *spectral.FFT
	autocorr   *stats.AutoCorrelation
	hps        *harmonic.HarmonicProduct
	window     *windowing.Hann
}

// NewAlternativeDetector builds a detector sized for FrameSize frames at
// sampleRate.
func NewAlternativeDetector(sampleRate int) *AlternativeDetector {
	return &AlternativeDetector{
		sampleRate: sampleRate,
		fft:        spectral.NewFFT(),
		autocorr:   stats.NewAutoCorrelation(FrameSize),
		hps:        harmonic.NewHarmonicProduct(sampleRate, 5, 70, 1000),
		window:     windowing.NewHann(FrameSize, true),
	}
}

// Candidates runs the autocorrelation, HPS, cepstral, and zero-crossing
// methods over frame (which must be FrameSize samples) and returns one
// PitchCandidate per method that produced a plausible voiced frequency.
// Candidates within 1% of frequency of one another are merged, keeping
// the higher-confidence entry.
func (ad *AlternativeDetector) Candidates(frameSamples []float64) []PitchCandidate {
	if len(frameSamples) != FrameSize {
		return nil
	}
	windowed := ad.window.Apply(frameSamples)

	var out []PitchCandidate
	if c, ok := ad.acfCandidate(windowed); ok {
		out = append(out, c)
	}
	if c, ok := ad.hpsCandidate(windowed); ok {
		out = append(out, c)
	}
	if c, ok := ad.cepstrumCandidate(windowed); ok {
		out = append(out, c)
	}
	if c, ok := ad.zeroCrossingCandidate(frameSamples); ok {
		out = append(out, c)
	}

	return dedupeCandidates(out)
}

func (ad *AlternativeDetector) acfCandidate(frameSamples []float64) (PitchCandidate, bool) {
	result, err := ad.autocorr.Compute(frameSamples)
	if err != nil || result.PeakLag <= 0 {
		return PitchCandidate{}, false
	}
	freq := float64(ad.sampleRate) / float64(result.PeakLag)
	if freq < 50 || freq > 1200 {
		return PitchCandidate{}, false
	}
	return PitchCandidate{Frequency: freq, Probability: clamp01(result.PeakCorrelation)}, true
}

func (ad *AlternativeDetector) hpsCandidate(frameSamples []float64) (PitchCandidate, bool) {
	freq, confidence := ad.hps.EstimateF0WithConfidence(frameSamples)
	if freq <= 0 {
		return PitchCandidate{}, false
	}
	return PitchCandidate{Frequency: freq, Probability: clamp01(confidence)}, true
}

func (ad *AlternativeDetector) cepstrumCandidate(frameSamples []float64) (PitchCandidate, bool) {
	spectrum := ad.fft.Compute(frameSamples)

	logMag := make([]complex128, len(spectrum))
	for i, c := range spectrum {
		mag := math.Hypot(real(c), imag(c))
		if mag < 1e-12 {
			mag = 1e-12
		}
		logMag[i] = complex(math.Log(mag), 0)
	}
	cepstrum := ad.fft.ComputeInverseReal(logMag)

	minQuefrency := ad.sampleRate / 1000 // 1000 Hz ceiling
	maxQuefrency := ad.sampleRate / 50   // 50 Hz floor
	if maxQuefrency >= len(cepstrum) {
		maxQuefrency = len(cepstrum) - 1
	}
	if minQuefrency < 1 {
		minQuefrency = 1
	}

	peakIdx := -1
	peakVal := 0.0
	for q := minQuefrency; q < maxQuefrency; q++ {
		if cepstrum[q] > peakVal {
			peakVal = cepstrum[q]
			peakIdx = q
		}
	}
	if peakIdx <= 0 {
		return PitchCandidate{}, false
	}
	freq := float64(ad.sampleRate) / float64(peakIdx)
	return PitchCandidate{Frequency: freq, Probability: clamp01(peakVal)}, true
}

func (ad *AlternativeDetector) zeroCrossingCandidate(frameSamples []float64) (PitchCandidate, bool) {
	crossings := 0
	for i := 1; i < len(frameSamples); i++ {
		if (frameSamples[i-1] < 0) != (frameSamples[i] < 0) {
			crossings++
		}
	}
	if crossings == 0 {
		return PitchCandidate{}, false
	}
	seconds := float64(len(frameSamples)) / float64(ad.sampleRate)
	freq := float64(crossings) / 2 / seconds
	if freq < 50 || freq > 1200 {
		return PitchCandidate{}, false
	}
	// Zero-crossing rate is a weak, noise-sensitive estimator; it is kept
	// deliberately low-confidence relative to the other methods.
	return PitchCandidate{Frequency: freq, Probability: 0.3}, true
}

// MergeCandidates combines a frame's core candidate set with advisory
// candidates from an AlternativeDetector, deduplicating entries within
// 1% of each other's frequency and keeping the higher-confidence one.
func MergeCandidates(base, extra []PitchCandidate) []PitchCandidate {
	combined := make([]PitchCandidate, 0, len(base)+len(extra))
	combined = append(combined, base...)
	combined = append(combined, extra...)
	return dedupeCandidates(combined)
}

func dedupeCandidates(in []PitchCandidate) []PitchCandidate {
	var out []PitchCandidate
	for _, c := range in {
		merged := false
		for i, existing := range out {
			if math.Abs(c.Frequency-existing.Frequency)/existing.Frequency < 0.01 {
				if c.Probability > existing.Probability {
					out[i] = c
				}
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, c)
		}
	}
	return out
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
