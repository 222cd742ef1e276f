package pyin

import "math"

// transitionCostWeight scales the path cost of an octave jump between
// two voiced frames: cost = |log2(f2/f1)| * transitionCostWeight.
const transitionCostWeight = 1.0

// voicingTransitionCost is the fixed path cost of switching between
// voiced and unvoiced across a frame boundary, in either direction.
const voicingTransitionCost = 1.5

// viterbiDecode picks the minimum-cost pitch path through a sequence of
// per-frame candidates via linear dynamic programming. Each candidate's
// own cost is 1-probability; moving from one frame's candidate to the
// next adds a transition cost on top. The path backtracks from whichever
// final-frame candidate carries the lowest accumulated cost.
//
// The returned slice has one selected candidate index per frame.
func viterbiDecode(frames [][]PitchCandidate) []int {
	n := len(frames)
	if n == 0 {
		return nil
	}

	cost := make([][]float64, n)
	backptr := make([][]int, n)

	cost[0] = make([]float64, len(frames[0]))
	backptr[0] = make([]int, len(frames[0]))
	for i, c := range frames[0] {
		cost[0][i] = 1 - c.Probability
		backptr[0][i] = -1
	}

	for t := 1; t < n; t++ {
		cur := frames[t]
		prev := frames[t-1]
		cost[t] = make([]float64, len(cur))
		backptr[t] = make([]int, len(cur))

		for i, c := range cur {
			best := math.Inf(1)
			bestJ := 0
			for j, p := range prev {
				total := cost[t-1][j] + transitionCost(p, c)
				if total < best {
					best = total
					bestJ = j
				}
			}
			cost[t][i] = best + (1 - c.Probability)
			backptr[t][i] = bestJ
		}
	}

	path := make([]int, n)
	last := 0
	for i := 1; i < len(cost[n-1]); i++ {
		if cost[n-1][i] < cost[n-1][last] {
			last = i
		}
	}
	path[n-1] = last
	for t := n - 1; t > 0; t-- {
		path[t-1] = backptr[t][path[t]]
	}
	return path
}

// transitionCost is the path cost of moving from candidate from to
// candidate to across one frame boundary: free between two unvoiced
// frames, voicingTransitionCost when voicing status changes, and an
// octave-jump-scaled cost between two voiced frames.
func transitionCost(from, to PitchCandidate) float64 {
	fromVoiced := from.Frequency > 0
	toVoiced := to.Frequency > 0

	if fromVoiced != toVoiced {
		return voicingTransitionCost
	}
	if !fromVoiced && !toVoiced {
		return 0
	}
	return math.Abs(math.Log2(to.Frequency/from.Frequency)) * transitionCostWeight
}
