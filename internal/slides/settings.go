package slides

import (
	"encoding/json"
	"time"
)

// Algorithm selects a change detection strategy.
type Algorithm string

const (
	// AlgorithmBasic is a plain per-pixel diff against the previous frame.
	// Cheap, but sensitive to illumination flicker and local motion such as
	// the presenter's cursor or an embedded video.
	AlgorithmBasic Algorithm = "basic"
	// AlgorithmAdvanced adds block-matching motion compensation so that
	// camera jitter and recompression noise that merely shift content do
	// not register as change.
	AlgorithmAdvanced Algorithm = "advanced"
)

// Settings is the immutable per-run configuration of a segmentation run.
// MinimumSlideLength is expressed in seconds to match the user-facing
// parameter document.
type Settings struct {
	Algorithm            Algorithm `json:"algorithm"              yaml:"algorithm"`
	PixelThreshold       int       `json:"pixel_threshold"        yaml:"pixel_threshold"`
	ChangeRatioThreshold float64   `json:"change_ratio_threshold" yaml:"change_ratio_threshold"`
	MinimumSlideLength   float64   `json:"minimum_slide_length"   yaml:"minimum_slide_length"`

	// Motion parameters, used by the advanced algorithm only.
	BlockSize       int     `json:"block_size"       yaml:"block_size"`
	SearchRadius    int     `json:"search_radius"    yaml:"search_radius"`
	MotionThreshold float64 `json:"motion_threshold" yaml:"motion_threshold"`
}

// DefaultSettings returns the documented defaults. Unspecified user keys
// fall back to these.
func DefaultSettings() Settings {
	return Settings{
		Algorithm:            AlgorithmAdvanced,
		PixelThreshold:       115,
		ChangeRatioThreshold: 0.02,
		MinimumSlideLength:   20,
		BlockSize:            16,
		SearchRadius:         8,
		MotionThreshold:      1.0,
	}
}

// MinimumSlideDuration is MinimumSlideLength as a time.Duration.
func (s Settings) MinimumSlideDuration() time.Duration {
	return time.Duration(s.MinimumSlideLength * float64(time.Second))
}

// Validate fails fast on out-of-range values so a run is never started with
// a half-usable configuration.
func (s Settings) Validate() error {
	switch s.Algorithm {
	case AlgorithmBasic, AlgorithmAdvanced:
	default:
		return configErrorf("unknown algorithm %q", s.Algorithm)
	}
	if s.PixelThreshold < 0 || s.PixelThreshold > 255 {
		return configErrorf("pixel_threshold %d outside [0, 255]", s.PixelThreshold)
	}
	if s.ChangeRatioThreshold < 0 || s.ChangeRatioThreshold > 1 {
		return configErrorf("change_ratio_threshold %v outside [0, 1]", s.ChangeRatioThreshold)
	}
	if s.MinimumSlideLength < 0 {
		return configErrorf("minimum_slide_length %v is negative", s.MinimumSlideLength)
	}
	if s.Algorithm == AlgorithmAdvanced {
		if s.BlockSize <= 0 {
			return configErrorf("block_size %d must be positive", s.BlockSize)
		}
		if s.SearchRadius <= 0 {
			return configErrorf("search_radius %d must be positive", s.SearchRadius)
		}
		if s.MotionThreshold < 0 {
			return configErrorf("motion_threshold %v is negative", s.MotionThreshold)
		}
	}
	return nil
}

// SettingsPatch is a partial settings document; nil fields keep the value
// they are applied over.
type SettingsPatch struct {
	Algorithm            *Algorithm `json:"algorithm"              yaml:"algorithm"`
	PixelThreshold       *int       `json:"pixel_threshold"        yaml:"pixel_threshold"`
	ChangeRatioThreshold *float64   `json:"change_ratio_threshold" yaml:"change_ratio_threshold"`
	MinimumSlideLength   *float64   `json:"minimum_slide_length"   yaml:"minimum_slide_length"`
	BlockSize            *int       `json:"block_size"             yaml:"block_size"`
	SearchRadius         *int       `json:"search_radius"          yaml:"search_radius"`
	MotionThreshold      *float64   `json:"motion_threshold"       yaml:"motion_threshold"`
}

// Apply overlays the patch on s and returns the result.
func (s Settings) Apply(p *SettingsPatch) Settings {
	if p == nil {
		return s
	}
	if p.Algorithm != nil {
		s.Algorithm = *p.Algorithm
	}
	if p.PixelThreshold != nil {
		s.PixelThreshold = *p.PixelThreshold
	}
	if p.ChangeRatioThreshold != nil {
		s.ChangeRatioThreshold = *p.ChangeRatioThreshold
	}
	if p.MinimumSlideLength != nil {
		s.MinimumSlideLength = *p.MinimumSlideLength
	}
	if p.BlockSize != nil {
		s.BlockSize = *p.BlockSize
	}
	if p.SearchRadius != nil {
		s.SearchRadius = *p.SearchRadius
	}
	if p.MotionThreshold != nil {
		s.MotionThreshold = *p.MotionThreshold
	}
	return s
}

// Overrides is a user-supplied parameter document, a nested set of named
// options:
//
//	{"slides": {"minimum_slide_length": 15, "algorithm": "advanced"},
//	 "masks": [{"location": "top-right", "size_x": 300, "size_y": 300}]}
type Overrides struct {
	Slides *SettingsPatch `json:"slides" yaml:"slides"`
	Masks  []MaskSpec     `json:"masks"  yaml:"masks"`
}

// ParseOverrides decodes a raw parameter document. Empty input means no
// overrides.
func ParseOverrides(raw []byte) (*Overrides, error) {
	o := &Overrides{}
	if len(raw) == 0 {
		return o, nil
	}
	if err := json.Unmarshal(raw, o); err != nil {
		return nil, configErrorf("parse parameters: %v", err)
	}
	return o, nil
}
