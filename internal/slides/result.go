package slides

import (
	"fmt"
	"strings"
	"time"
)

// Slide is a maximal interval during which the presented content is
// considered unchanged. Start is inclusive, End is the start of the next
// slide (or the last frame's timestamp for the final slide); adjacent slides
// share the boundary, so the list is gapless.
type Slide struct {
	Start time.Duration
	End   time.Duration
	// RepresentativeFrame is the midpoint frame of the interval, the sample
	// least likely to be part of a transition. It is handed to the sink as
	// the slide's preview image.
	RepresentativeFrame uint64
}

// Duration of the slide.
func (s Slide) Duration() time.Duration { return s.End - s.Start }

// Midpoint is the timestamp halfway through the slide.
func (s Slide) Midpoint() time.Duration { return s.Start + (s.End-s.Start)/2 }

// Result is the outcome of one segmentation run. Immutable once the run
// completes and the only data that outlives it.
type Result struct {
	Slides    []Slide
	Algorithm Algorithm
	Settings  Settings
}

// NrSlides is the number of detected slides.
func (r *Result) NrSlides() int { return len(r.Slides) }

// FormatTimestamp renders a duration from video start as HH:MM:SS.mmm.
// Assumes presentations shorter than 24 hours.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	ms := (d % time.Second) / time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

// Metadata is the persisted shape of a run, as consumed by the previewer.
type Metadata struct {
	ListSlides [][]string `json:"listslides"`
	NrSlides   int        `json:"nrslides"`
	Algorithm  Algorithm  `json:"algorithm"`
	Settings   Settings   `json:"settings"`
}

// Metadata builds the persisted document. previewIDs are the opaque handles
// the storage collaborator assigned to each slide's representative image, in
// slide order.
func (r *Result) Metadata(previewIDs []string) (*Metadata, error) {
	if len(previewIDs) != len(r.Slides) {
		return nil, fmt.Errorf("have %d preview ids for %d slides", len(previewIDs), len(r.Slides))
	}
	meta := &Metadata{
		ListSlides: make([][]string, len(r.Slides)),
		NrSlides:   len(r.Slides),
		Algorithm:  r.Algorithm,
		Settings:   r.Settings,
	}
	for i, s := range r.Slides {
		meta.ListSlides[i] = []string{
			FormatTimestamp(s.Start),
			FormatTimestamp(s.End),
			previewIDs[i],
		}
	}
	return meta, nil
}

// WebVTTChapters renders the slide list as a WebVTT chapter track for the
// video player.
func (r *Result) WebVTTChapters() string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for i, s := range r.Slides {
		fmt.Fprintf(&b, "%s --> %s\n", FormatTimestamp(s.Start), FormatTimestamp(s.End))
		fmt.Fprintf(&b, "Slide %d\n\n", i+1)
	}
	return b.String()
}
