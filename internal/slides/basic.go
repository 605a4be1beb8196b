package slides

import "image"

// basicDetector converts each frame to intensity (done upstream), diffs it
// against the previous frame and reports the ratio of significantly changed
// unmasked pixels. Known to misfire on illumination flicker and local
// motion; the advanced detector exists for exactly those inputs.
type basicDetector struct {
	settings Settings
	mask     *Mask
	prev     *image.Gray
	stable   *image.Gray
}

func (d *basicDetector) Score(f *Frame) Signal {
	if d.prev == nil {
		d.prev = f.Pixels
		return Signal{}
	}
	ratio := diffRatio(f.Pixels, d.prev, d.settings.PixelThreshold, d.mask.Area())
	d.prev = f.Pixels
	return Signal{
		ChangeRatio: ratio,
		Candidate:   ratio > d.settings.ChangeRatioThreshold,
	}
}

func (d *basicDetector) Drift(f *Frame) float64 {
	if d.stable == nil {
		return 0
	}
	return diffRatio(f.Pixels, d.stable, d.settings.PixelThreshold, d.mask.Area())
}

func (d *basicDetector) MarkStable(f *Frame) {
	d.stable = f.Pixels
}
