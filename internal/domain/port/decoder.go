package port

import (
	"context"
	"time"

	"github.com/E-CAM/presentation-extractor/internal/slides"
)

type VideoInfo struct {
	Width      int
	Height     int
	FPS        float64
	Duration   float64
	FrameCount int
}

// VideoDecoder turns a downloaded video file into the grayscale frame stream
// the segmenter consumes, and renders representative stills.
type VideoDecoder interface {
	Probe(ctx context.Context, videoPath string) (*VideoInfo, error)
	OpenFrames(ctx context.Context, videoPath string, info *VideoInfo) (slides.FrameSource, func() error, error)
	Snapshot(ctx context.Context, videoPath string, at time.Duration, outPath string) error
}
