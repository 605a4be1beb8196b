package slides

import "time"

// segmenter accumulates confirmed boundaries and assembles the final
// ordered, gapless slide list when the stream ends. A still-pending
// candidate never reaches it: unconfirmed frames simply extend the open
// slide.
type segmenter struct {
	started    bool
	firstIndex uint64
	firstTS    time.Duration
	lastIndex  uint64
	lastTS     time.Duration
	boundaries []Boundary
}

func (s *segmenter) observe(f *Frame) {
	if !s.started {
		s.started = true
		s.firstIndex = f.Index
		s.firstTS = f.Timestamp
	}
	s.lastIndex = f.Index
	s.lastTS = f.Timestamp
}

func (s *segmenter) confirm(b Boundary) {
	s.boundaries = append(s.boundaries, b)
}

// finish closes the open slide at the last frame and builds the Result.
// With zero or one frame it produces a single, possibly zero-length slide.
func (s *segmenter) finish(settings Settings) *Result {
	starts := make([]Boundary, 0, len(s.boundaries)+1)
	starts = append(starts, Boundary{Index: s.firstIndex, Timestamp: s.firstTS})
	starts = append(starts, s.boundaries...)

	slides := make([]Slide, len(starts))
	for i, b := range starts {
		end := Boundary{Index: s.lastIndex, Timestamp: s.lastTS}
		lastFrame := s.lastIndex
		if i+1 < len(starts) {
			end = starts[i+1]
			lastFrame = end.Index - 1
		}
		slides[i] = Slide{
			Start:               b.Timestamp,
			End:                 end.Timestamp,
			RepresentativeFrame: (b.Index + lastFrame) / 2,
		}
	}

	return &Result{
		Slides:    slides,
		Algorithm: settings.Algorithm,
		Settings:  settings,
	}
}

// partial builds a Result from confirmed boundaries only. Used when the
// stream aborts: the incomplete trailing interval is not emitted as a slide.
func (s *segmenter) partial(settings Settings) *Result {
	r := &Result{Algorithm: settings.Algorithm, Settings: settings}
	if len(s.boundaries) == 0 {
		return r
	}
	prev := Boundary{Index: s.firstIndex, Timestamp: s.firstTS}
	for _, b := range s.boundaries {
		r.Slides = append(r.Slides, Slide{
			Start:               prev.Timestamp,
			End:                 b.Timestamp,
			RepresentativeFrame: (prev.Index + b.Index - 1) / 2,
		})
		prev = b
	}
	return r
}
