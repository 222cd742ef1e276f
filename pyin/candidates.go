package pyin

import "sort"

// deepSearchThreshold replaces cfg.Threshold in deep-search mode: it
// sits above any real CMNDF dip, so every local minimum in range is
// accepted as a candidate instead of only those beating a cutoff.
const deepSearchThreshold = 10.0

// maxDeepSearchCandidates caps the deep-search candidate set to the
// strongest minima so a flagged region doesn't flood the Viterbi
// lattice with every ripple in the difference function.
const maxDeepSearchCandidates = 20

// deepSearchUnvoicedProbability forces the unvoiced candidate's
// probability to near-zero in deep-search mode, since a deep search is
// only ever requested over a region the user believes is voiced.
const deepSearchUnvoicedProbability = 1e-15

// extractCandidates runs the YIN difference function and CMNDF over one
// frame and returns the resulting pitch candidates plus the
// always-present unvoiced candidate. cfg.DeepSearch widens the accepted
// minima from "beats Threshold" to "every local minimum in range",
// caps the result to the smallest-dip candidates, and forces the
// unvoiced candidate's probability down, trading precision for
// exhaustiveness when the user explicitly asks for a careful re-pass.
func extractCandidates(frameSamples []float64, sampleRate int, cfg Config) []PitchCandidate {
	if rms(frameSamples) < cfg.RMSThreshold {
		return []PitchCandidate{{Frequency: 0, Probability: 0.99, YinDip: 0.01}}
	}

	d := differenceFunction(frameSamples)
	cmndf := cumulativeMeanNormalizedDifference(d)

	minTau := int(float64(sampleRate) / cfg.MaxFrequency)
	maxTau := int(float64(sampleRate) / cfg.MinFrequency)
	if maxTau >= len(cmndf) {
		maxTau = len(cmndf) - 1
	}
	if minTau < 1 {
		minTau = 1
	}

	minima := localMinima(cmndf, minTau, maxTau)

	threshold := cfg.Threshold
	if cfg.DeepSearch {
		threshold = deepSearchThreshold
	}

	var voiced []PitchCandidate
	for _, tau := range minima {
		if cmndf[tau] >= threshold {
			continue
		}
		refined := parabolicInterpolate(cmndf, tau)
		freq := tauToFrequency(refined, sampleRate)
		if freq < cfg.MinFrequency || freq > cfg.MaxFrequency {
			continue
		}
		dip := cmndf[tau]
		prob := 1 - dip
		if prob < 1e-4 {
			prob = 1e-4
		}
		voiced = append(voiced, PitchCandidate{Frequency: freq, Probability: prob, YinDip: dip})
	}

	if cfg.DeepSearch && len(voiced) > maxDeepSearchCandidates {
		sort.Slice(voiced, func(i, j int) bool { return voiced[i].YinDip < voiced[j].YinDip })
		voiced = voiced[:maxDeepSearchCandidates]
	}

	bestDip := 1.0
	for _, tau := range minima {
		if cmndf[tau] < bestDip {
			bestDip = cmndf[tau]
		}
	}

	unvoicedProb := bestDip * 0.5
	if cfg.DeepSearch {
		unvoicedProb = deepSearchUnvoicedProbability
	} else {
		if unvoicedProb < 0.05 {
			unvoicedProb = 0.05
		}
		if unvoicedProb > 0.9 {
			unvoicedProb = 0.9
		}
	}

	candidates := make([]PitchCandidate, 0, len(voiced)+1)
	candidates = append(candidates, PitchCandidate{Frequency: 0, Probability: unvoicedProb, YinDip: 1 - unvoicedProb})
	candidates = append(candidates, voiced...)
	return candidates
}
