package notemodel

import (
	"math"
	"sort"

	"github.com/kjanssen/pitchscribe/algorithms/stats"
	"github.com/kjanssen/pitchscribe/frame"
	"github.com/kjanssen/pitchscribe/pyin"
)

// snapPixels is the pixel radius, in screen space, within which a time
// value snaps to a candidate snap point under SnapTimeToPeers.
const snapPixels = 10.0

// MedianPitch returns the median frequency of every voiced frame in
// track whose timestamp falls in [start, end). Returns 0 if no voiced
// frame is found in range. The median is computed via the teacher's
// linear-interpolation percentile estimator at q=50, which for an even
// count averages the two central values, matching the conventional
// definition of a median exactly.
func MedianPitch(track *pyin.PitchTrack, start, end float64) float64 {
	var voiced []float64
	for _, f := range track.Frames {
		if f.Timestamp < start || f.Timestamp >= end {
			continue
		}
		if f.HasPitch {
			voiced = append(voiced, f.Frequency)
		}
	}
	if len(voiced) == 0 {
		return 0
	}
	p := stats.NewPercentiles()
	median, err := p.CalculatePercentile(voiced, 50)
	if err != nil {
		return 0
	}
	return median
}

// SnapTime rounds t to the nearest frame-grid line for sampleRate.
func SnapTime(t float64, sampleRate int) float64 {
	return frame.New(sampleRate).Snap(t)
}

// SnapTimeToPeers snaps t to whichever of its peer notes' boundaries
// (excluding ignoreId), the analysis grid, 0, or duration lies closest,
// within snapPixels/zoom seconds of t. shiftHeld bypasses snapping
// entirely, returning t unchanged. Ties go to whichever candidate was
// considered first: peer boundaries, then the grid, then 0, then
// duration.
func SnapTimeToPeers(t float64, notes List, zoom, frameDuration, duration float64, ignoreId string, shiftHeld bool) float64 {
	if shiftHeld || zoom <= 0 {
		return t
	}

	tolerance := snapPixels / zoom
	best := t
	bestDist := math.Inf(1)

	consider := func(candidate float64) {
		dist := math.Abs(candidate - t)
		if dist > tolerance {
			return
		}
		if dist < bestDist {
			best = candidate
			bestDist = dist
		}
	}

	for _, n := range notes {
		if n.ID == ignoreId {
			continue
		}
		consider(n.Start)
		consider(n.End)
	}
	if frameDuration > 0 {
		consider(math.Round(t/frameDuration) * frameDuration)
	}
	consider(0)
	consider(duration)

	return best
}

// sortedCopy returns notes sorted by Start, without mutating the input.
func sortedCopy(notes List) List {
	out := make(List, len(notes))
	copy(out, notes)
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// CreateOrReplace removes every existing note whose midpoint falls in
// [start, end], then, if pitch is positive, inserts a new note spanning
// [start, end) at pitch, snapped to the sample rate's frame grid.
// Otherwise it returns with only the removals applied.
func CreateOrReplace(notes List, start, end, pitch float64, sampleRate int) List {
	start = SnapTime(start, sampleRate)
	end = SnapTime(end, sampleRate)
	if end-start < MinDuration {
		end = start + MinDuration
	}

	var out List
	for _, n := range sortedCopy(notes) {
		mid := (n.Start + n.End) / 2
		if mid >= start && mid <= end {
			continue
		}
		out = append(out, n)
	}

	if pitch > 0 {
		out = append(out, Note{ID: NewID(), Start: start, End: end, Pitch: pitch})
	}
	return sortedCopy(out)
}

// SplitNote divides the note with id into two notes at splitTime
// (snapped to the grid). Each half's pitch is recomputed as the median
// of track over its new sub-range, falling back to the original note's
// pitch if that median is 0. Returns notes unchanged if id isn't found
// or splitTime doesn't fall strictly inside the note (respecting
// MinDuration on both halves).
func SplitNote(notes List, track *pyin.PitchTrack, id string, splitTime float64, sampleRate int) List {
	splitTime = SnapTime(splitTime, sampleRate)
	out := make(List, 0, len(notes)+1)
	for _, n := range notes {
		if n.ID != id {
			out = append(out, n)
			continue
		}
		if splitTime <= n.Start+MinDuration || splitTime >= n.End-MinDuration {
			out = append(out, n) // split point too close to an edge
			continue
		}
		left := n
		left.End = splitTime
		if p := MedianPitch(track, left.Start, left.End); p > 0 {
			left.Pitch = p
		}
		right := Note{ID: NewID(), Start: splitTime, End: n.End, Pitch: n.Pitch}
		if p := MedianPitch(track, right.Start, right.End); p > 0 {
			right.Pitch = p
		}
		out = append(out, left, right)
	}
	return sortedCopy(out)
}

// ResizeWithPush moves the boundaries of the note with id to
// (newStart, newEnd), snapped to the grid, and pushes the nearest
// neighbor's boundary out of the way rather than truncating the resized
// note when it would otherwise overlap:
//   - growing the start edge earlier pushes back the previous note's end
//   - growing the end edge later pushes forward the next note's start
//   - if pushing would shrink a neighbor below MinDuration, that
//     neighbor is removed entirely instead of left with an invalid span
//
// The resized note and any neighbor actually pushed have their pitch
// recomputed as the median of track over their new range, falling back
// to their previous pitch if that median is 0.
func ResizeWithPush(notes List, track *pyin.PitchTrack, id string, newStart, newEnd float64, sampleRate int) List {
	newStart = SnapTime(newStart, sampleRate)
	newEnd = SnapTime(newEnd, sampleRate)
	if newEnd-newStart < MinDuration {
		newEnd = newStart + MinDuration
	}

	sorted := sortedCopy(notes)
	idx := -1
	for i, n := range sorted {
		if n.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return sorted
	}

	out := make(List, len(sorted))
	copy(out, sorted)
	out[idx].Start = newStart
	out[idx].End = newEnd
	if p := MedianPitch(track, newStart, newEnd); p > 0 {
		out[idx].Pitch = p
	}

	if idx > 0 {
		prev := &out[idx-1]
		if prev.End > newStart {
			prev.End = newStart
			if prev.Duration() < MinDuration {
				out = append(out[:idx-1], out[idx:]...)
				idx--
			} else if p := MedianPitch(track, prev.Start, prev.End); p > 0 {
				prev.Pitch = p
			}
		}
	}
	if idx < len(out)-1 {
		next := &out[idx+1]
		if next.Start < newEnd {
			next.Start = newEnd
			if next.Duration() < MinDuration {
				out = append(out[:idx+1], out[idx+2:]...)
			} else if p := MedianPitch(track, next.Start, next.End); p > 0 {
				next.Pitch = p
			}
		}
	}

	return out
}
