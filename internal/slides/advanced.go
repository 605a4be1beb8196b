package slides

import (
	"image"
	"math"
)

// advancedDetector estimates block-wise motion between consecutive frames
// and measures a motion-compensated residual: blocks are aligned along their
// estimated motion vector before differencing, so camera jitter and
// recompression drift that merely shift content do not register as change.
//
// A candidate transition needs both a high residual and a motion model that
// cannot explain it: a hard cut matches no small offset, so its vectors
// collapse to zero and the residual stays high, while panning produces
// consistent vectors and a low compensated residual.
type advancedDetector struct {
	settings Settings
	prev     *image.Gray
	stable   *image.Gray
}

func (d *advancedDetector) Score(f *Frame) Signal {
	if d.prev == nil {
		d.prev = f.Pixels
		return Signal{}
	}
	residual, motion := compensatedDiff(d.prev, f.Pixels, d.settings)
	d.prev = f.Pixels
	return Signal{
		ChangeRatio: residual,
		Motion:      motion,
		Candidate: residual > d.settings.ChangeRatioThreshold &&
			motion < d.settings.MotionThreshold,
	}
}

func (d *advancedDetector) Drift(f *Frame) float64 {
	if d.stable == nil {
		return 0
	}
	residual, _ := compensatedDiff(d.stable, f.Pixels, d.settings)
	return residual
}

func (d *advancedDetector) MarkStable(f *Frame) {
	d.stable = f.Pixels
}

// compensatedDiff estimates per-block motion from ref to cur and returns the
// residual significant-pixel ratio after compensation together with the mean
// motion magnitude. Blocks are sampled on a coarse grid; matching uses
// sum-of-absolute-differences with early exit.
func compensatedDiff(ref, cur *image.Gray, s Settings) (residual, motion float64) {
	if len(ref.Pix) != len(cur.Pix) {
		return 1, 0
	}

	w, h := cur.Rect.Dx(), cur.Rect.Dy()
	block, radius := s.BlockSize, s.SearchRadius
	if w < block+2*radius || h < block+2*radius {
		// Frame too small for block matching, fall back to a plain diff.
		return diffRatio(cur, ref, s.PixelThreshold, 0), 0
	}

	// Every other block is enough to characterize global or block-wise
	// motion; full density only adds cost.
	step := block * 2

	var (
		changed, counted int
		magnitudes       float64
		blocks           int
	)
	for by := radius; by+block <= h-radius; by += step {
		for bx := radius; bx+block <= w-radius; bx += step {
			zero := blockSAD(ref, cur, bx, by, 0, 0, block, math.MaxInt)
			best, bdx, bdy := zero, 0, 0
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					sad := blockSAD(ref, cur, bx, by, dx, dy, block, best)
					if sad < best {
						best, bdx, bdy = sad, dx, dy
					}
				}
			}
			// The offset must improve meaningfully on staying put,
			// otherwise no small motion explains the block and it is
			// treated as unmoved content.
			if zero-best < zero/4 {
				bdx, bdy = 0, 0
			}

			sig, n := blockResidual(ref, cur, bx, by, bdx, bdy, block, s.PixelThreshold)
			changed += sig
			counted += n
			magnitudes += math.Hypot(float64(bdx), float64(bdy))
			blocks++
		}
	}

	if counted == 0 {
		return 0, 0
	}
	return float64(changed) / float64(counted), magnitudes / float64(blocks)
}

// blockSAD compares the cur block at (bx, by) against the ref block shifted
// by (dx, dy), sampling every other pixel. Returns early once the sum
// exceeds limit.
func blockSAD(ref, cur *image.Gray, bx, by, dx, dy, block, limit int) int {
	sum := 0
	for y := 0; y < block; y += 2 {
		ci := (by+y)*cur.Stride + bx
		ri := (by+y+dy)*ref.Stride + bx + dx
		for x := 0; x < block; x += 2 {
			d := int(cur.Pix[ci+x]) - int(ref.Pix[ri+x])
			if d < 0 {
				d = -d
			}
			sum += d
		}
		if sum >= limit {
			return sum
		}
	}
	return sum
}

// blockResidual counts significant pixel differences between the cur block
// and the motion-aligned ref block.
func blockResidual(ref, cur *image.Gray, bx, by, dx, dy, block, threshold int) (changed, counted int) {
	for y := 0; y < block; y++ {
		ci := (by+y)*cur.Stride + bx
		ri := (by+y+dy)*ref.Stride + bx + dx
		for x := 0; x < block; x++ {
			d := int(cur.Pix[ci+x]) - int(ref.Pix[ri+x])
			if d < 0 {
				d = -d
			}
			if d > threshold {
				changed++
			}
		}
	}
	return changed, block * block
}
