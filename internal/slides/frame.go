package slides

import (
	"image"
	"io"
	"time"
)

// Frame is a single decoded video frame: a luminance grid plus its position
// in the stream. Frames are owned transiently by the analysis pipeline; the
// detectors keep at most the previous frame and a stable reference around,
// everything else is discardable once scored.
type Frame struct {
	Index     uint64
	Timestamp time.Duration
	Pixels    *image.Gray
}

// FrameSource yields frames in presentation order with monotonically
// increasing timestamps. Next returns io.EOF once the stream is exhausted.
// Sources may block on I/O or decoding; the pipeline simply stops calling
// Next when it is done.
type FrameSource interface {
	Next() (*Frame, error)
}

// SliceSource is a FrameSource over an in-memory frame slice. Mostly useful
// for tests and for re-segmenting already decoded material.
type SliceSource struct {
	frames []*Frame
	pos    int
}

func NewSliceSource(frames []*Frame) *SliceSource {
	return &SliceSource{frames: frames}
}

func (s *SliceSource) Next() (*Frame, error) {
	if s.pos >= len(s.frames) {
		return nil, io.EOF
	}
	f := s.frames[s.pos]
	s.pos++
	return f, nil
}
