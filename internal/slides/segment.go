// Package slides partitions a stream of video frames into contiguous slide
// intervals by detecting the moments of visual transition. The package is
// pure computation: frames come from a FrameSource collaborator and the
// caller persists the resulting slide list.
//
// A run is inherently sequential, each frame is scored against the previous
// one. Distinct runs are fully independent: every run owns its detector
// state, so any number of videos can be analyzed concurrently, and Settings
// and masks are read-only and safe to share. For a single long video,
// Stitch reconciles independently analyzed overlapping chunks.
package slides

import (
	"context"
	"errors"
	"io"
)

// Segment consumes the frame stream and returns the ordered, gapless slide
// list. Settings are validated before any frame is read; masks are resolved
// against the first frame's bounds. A frame read failure aborts the run and
// returns the already confirmed slides alongside a *DecodeError. A stream of
// zero or one frame yields exactly one slide spanning the available
// duration.
func Segment(ctx context.Context, src FrameSource, settings Settings, masks []MaskSpec) (*Result, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	seg := &segmenter{}
	var (
		mask    *Mask
		machine *transitionMachine
	)

	for {
		if err := ctx.Err(); err != nil {
			return seg.partial(settings), &DecodeError{Frame: seg.lastIndex, Err: err}
		}

		f, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return seg.partial(settings), &DecodeError{Frame: seg.lastIndex + 1, Err: err}
		}

		if machine == nil {
			mask, err = CompileMasks(masks, f.Pixels.Bounds())
			if err != nil {
				return nil, err
			}
			machine = newTransitionMachine(newDetector(settings, mask), settings, seg.confirm)
		}

		mask.Apply(f.Pixels)
		seg.observe(f)
		machine.Observe(f)
	}

	return seg.finish(settings), nil
}
