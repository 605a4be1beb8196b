package slides

import (
	"image"
	"io"
	"time"
)

// uniformFrame builds a w×h frame filled with one luminance value.
func uniformFrame(idx uint64, ts time.Duration, w, h int, fill uint8) *Frame {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = fill
	}
	return &Frame{Index: idx, Timestamp: ts, Pixels: g}
}

// texturedFrame builds a frame with a deterministic texture, horizontally
// shifted by shift pixels so block matching has something to find.
func texturedFrame(idx uint64, ts time.Duration, w, h, shift int) *Frame {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := ((x-shift+4096)*31 + y*17) % 251
			g.Pix[y*g.Stride+x] = uint8(v)
		}
	}
	return &Frame{Index: idx, Timestamp: ts, Pixels: g}
}

// sceneFrames builds a 1 fps sequence of static scenes, one fill value per
// scene, framesPerScene frames each.
func sceneFrames(fills []uint8, framesPerScene, w, h int) []*Frame {
	var frames []*Frame
	idx := uint64(0)
	for _, fill := range fills {
		for i := 0; i < framesPerScene; i++ {
			frames = append(frames, uniformFrame(idx, time.Duration(idx)*time.Second, w, h, fill))
			idx++
		}
	}
	return frames
}

// paintRect overwrites a rectangle of the frame with a fill value.
func paintRect(f *Frame, r image.Rectangle, fill uint8) {
	g := f.Pixels
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			g.Pix[y*g.Stride+x] = fill
		}
	}
}

// failingSource yields the given frames and then fails with err instead of
// io.EOF.
type failingSource struct {
	frames []*Frame
	err    error
	pos    int
}

func (s *failingSource) Next() (*Frame, error) {
	if s.pos >= len(s.frames) {
		return nil, s.err
	}
	f := s.frames[s.pos]
	s.pos++
	return f, nil
}

// countingSource counts Next calls, to prove validation happens before any
// frame is read.
type countingSource struct {
	calls int
}

func (s *countingSource) Next() (*Frame, error) {
	s.calls++
	return nil, io.EOF
}

func basicTestSettings() Settings {
	s := DefaultSettings()
	s.Algorithm = AlgorithmBasic
	s.PixelThreshold = 50
	s.ChangeRatioThreshold = 0.5
	s.MinimumSlideLength = 2
	return s
}
