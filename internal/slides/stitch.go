package slides

import (
	"fmt"
	"sort"
	"time"
)

// ChunkResult pairs a chunk's Result with the absolute time range of the
// frames it analyzed. Chunks of one video must be fed frames carrying their
// absolute indices and timestamps.
type ChunkResult struct {
	Result *Result
	Start  time.Duration
	End    time.Duration
}

// Stitch reconciles the results of two consecutive, overlapping chunks of
// the same video into one gapless Result, the documented alternative to
// sequential analysis of a long recording.
//
// The rule is deterministic: outside the overlap window each chunk owns its
// boundaries; inside the window the boundary set of the chunk that observed
// the longer confirmed run (the larger minimum slide duration among its
// slides touching the window) wins, ties going to the earlier chunk.
// Boundaries that would produce an interior slide shorter than the minimum
// slide length are dropped, earlier boundary first.
func Stitch(a, b ChunkResult) (*Result, error) {
	if a.Result == nil || b.Result == nil || len(a.Result.Slides) == 0 || len(b.Result.Slides) == 0 {
		return nil, fmt.Errorf("stitch: both chunks need a non-empty result")
	}
	if a.Result.Settings != b.Result.Settings {
		return nil, configErrorf("stitch: chunks were analyzed with different settings")
	}
	if b.Start < a.Start || b.Start > a.End || b.End < a.End {
		return nil, fmt.Errorf("stitch: chunks [%v, %v] and [%v, %v] do not overlap in order",
			a.Start, a.End, b.Start, b.End)
	}

	wStart, wEnd := b.Start, a.End

	winner := a.Result
	if minSlideIn(b.Result, wStart, wEnd) > minSlideIn(a.Result, wStart, wEnd) {
		winner = b.Result
	}

	var bounds []time.Duration
	for _, s := range a.Result.Slides[1:] {
		if s.Start < wStart {
			bounds = append(bounds, s.Start)
		}
	}
	for _, s := range winner.Slides[1:] {
		if s.Start >= wStart && s.Start <= wEnd {
			bounds = append(bounds, s.Start)
		}
	}
	for _, s := range b.Result.Slides[1:] {
		if s.Start > wEnd {
			bounds = append(bounds, s.Start)
		}
	}
	sort.Slice(bounds, func(i, j int) bool { return bounds[i] < bounds[j] })

	settings := a.Result.Settings
	minSlide := settings.MinimumSlideDuration()
	globalStart := a.Result.Slides[0].Start
	globalEnd := b.Result.Slides[len(b.Result.Slides)-1].End

	kept := bounds[:0]
	prev := globalStart
	for _, t := range bounds {
		if t-prev < minSlide || t <= prev {
			continue
		}
		kept = append(kept, t)
		prev = t
	}

	merged := &Result{Algorithm: settings.Algorithm, Settings: settings}
	start := globalStart
	for i := 0; i <= len(kept); i++ {
		end := globalEnd
		if i < len(kept) {
			end = kept[i]
		}
		merged.Slides = append(merged.Slides, Slide{
			Start:               start,
			End:                 end,
			RepresentativeFrame: stitchRep(a, b, wStart, start, end),
		})
		start = end
	}
	return merged, nil
}

// minSlideIn is the shortest slide duration among slides intersecting the
// window, or the maximum duration when none do.
func minSlideIn(r *Result, wStart, wEnd time.Duration) time.Duration {
	min := time.Duration(1<<63 - 1)
	for _, s := range r.Slides {
		if s.End <= wStart || s.Start >= wEnd {
			continue
		}
		if d := s.Duration(); d < min {
			min = d
		}
	}
	return min
}

// stitchRep picks a representative frame for a merged slide: the source
// slide with the same start when one exists, otherwise the source slide
// containing the merged midpoint.
func stitchRep(a, b ChunkResult, wStart, start, end time.Duration) uint64 {
	src := a.Result
	if start >= wStart {
		src = b.Result
	}
	for _, s := range src.Slides {
		if s.Start == start {
			return s.RepresentativeFrame
		}
	}
	mid := start + (end-start)/2
	for _, r := range []*Result{a.Result, b.Result} {
		for _, s := range r.Slides {
			if s.Start <= mid && mid < s.End {
				return s.RepresentativeFrame
			}
		}
	}
	return 0
}
