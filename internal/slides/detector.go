package slides

import "image"

// Signal is the per-frame difference measurement handed to the transition
// state machine.
type Signal struct {
	// ChangeRatio is the fraction of unmasked pixels that changed
	// significantly versus the previous frame (motion-compensated for the
	// advanced detector).
	ChangeRatio float64
	// Motion is the mean estimated motion magnitude in pixels. Always zero
	// for the basic detector.
	Motion float64
	// Candidate reports whether this frame should be treated as a candidate
	// transition.
	Candidate bool
}

// Detector scores frames against its running state. Implementations are
// stateful and exclusively owned by a single run; they must never be shared
// across concurrent runs.
type Detector interface {
	// Score compares the frame with the previous one and advances the
	// running reference state.
	Score(f *Frame) Signal
	// Drift reports how far the frame content has moved from the last
	// stable slide content, as a significant-pixel ratio. The state machine
	// uses it to tell a real transition from a transient blip.
	Drift(f *Frame) float64
	// MarkStable records the frame as the content of the currently open
	// slide.
	MarkStable(f *Frame)
}

func newDetector(s Settings, mask *Mask) Detector {
	if s.Algorithm == AlgorithmAdvanced {
		return &advancedDetector{settings: s}
	}
	return &basicDetector{settings: s, mask: mask}
}

// diffRatio counts pixels whose absolute difference exceeds the threshold
// and divides by the number of unmasked pixels. Both images must share the
// same bounds and have masked regions zeroed.
func diffRatio(a, b *image.Gray, threshold int, maskArea int) float64 {
	total := len(a.Pix)
	if total == 0 {
		return 0
	}
	if total != len(b.Pix) {
		// A mid-stream geometry change can only be a cut.
		return 1
	}
	changed := 0
	for i, pa := range a.Pix {
		d := int(pa) - int(b.Pix[i])
		if d < 0 {
			d = -d
		}
		if d > threshold {
			changed++
		}
	}
	denom := total - maskArea
	if denom <= 0 {
		return 0
	}
	return float64(changed) / float64(denom)
}
