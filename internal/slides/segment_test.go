package slides

import (
	"context"
	"errors"
	"fmt"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentThreeStaticScenes(t *testing.T) {
	// 30 frames at 1 fps: three 10-second static scenes with abrupt
	// full-frame changes at frame 10 and frame 20.
	frames := sceneFrames([]uint8{10, 120, 230}, 10, 32, 24)

	res, err := Segment(context.Background(), NewSliceSource(frames), basicTestSettings(), nil)
	require.NoError(t, err)

	require.Equal(t, 3, res.NrSlides())
	assert.Equal(t, AlgorithmBasic, res.Algorithm)

	assert.Equal(t, time.Duration(0), res.Slides[0].Start)
	assert.Equal(t, 10*time.Second, res.Slides[0].End)
	assert.Equal(t, 10*time.Second, res.Slides[1].Start)
	assert.Equal(t, 20*time.Second, res.Slides[1].End)
	assert.Equal(t, 20*time.Second, res.Slides[2].Start)
	assert.Equal(t, 29*time.Second, res.Slides[2].End)

	// Representative frames sit at the interval midpoints.
	assert.Equal(t, uint64(4), res.Slides[0].RepresentativeFrame)
	assert.Equal(t, uint64(14), res.Slides[1].RepresentativeFrame)
	assert.Equal(t, uint64(24), res.Slides[2].RepresentativeFrame)
}

func TestSegmentSingleFrameGlitchDiscarded(t *testing.T) {
	frames := sceneFrames([]uint8{10, 120, 230}, 10, 32, 24)
	// One frame differing sharply at frame 15, reverting immediately.
	frames[15] = uniformFrame(15, 15*time.Second, 32, 24, 255)

	res, err := Segment(context.Background(), NewSliceSource(frames), basicTestSettings(), nil)
	require.NoError(t, err)

	require.Equal(t, 3, res.NrSlides())
	assert.Equal(t, 10*time.Second, res.Slides[1].Start)
	assert.Equal(t, 20*time.Second, res.Slides[1].End)
}

func TestSegmentGaplessAndOrdered(t *testing.T) {
	frames := sceneFrames([]uint8{0, 60, 130, 200, 255}, 7, 32, 24)

	res, err := Segment(context.Background(), NewSliceSource(frames), basicTestSettings(), nil)
	require.NoError(t, err)
	require.NotEmpty(t, res.Slides)

	assert.Equal(t, frames[0].Timestamp, res.Slides[0].Start)
	assert.Equal(t, frames[len(frames)-1].Timestamp, res.Slides[len(res.Slides)-1].End)
	for i := 0; i+1 < len(res.Slides); i++ {
		assert.Equal(t, res.Slides[i].End, res.Slides[i+1].Start, "slide %d must touch slide %d", i, i+1)
		assert.GreaterOrEqual(t, res.Slides[i].Duration(), 2*time.Second,
			"interior slide %d shorter than the minimum", i)
	}
}

func TestSegmentUnreachableThresholdYieldsOneSlide(t *testing.T) {
	frames := sceneFrames([]uint8{10, 120, 230}, 10, 32, 24)
	settings := basicTestSettings()
	settings.ChangeRatioThreshold = 1.0

	res, err := Segment(context.Background(), NewSliceSource(frames), settings, nil)
	require.NoError(t, err)
	require.Equal(t, 1, res.NrSlides())
	assert.Equal(t, time.Duration(0), res.Slides[0].Start)
	assert.Equal(t, 29*time.Second, res.Slides[0].End)
}

func TestSegmentZeroMinimumYieldsMaximumTransitions(t *testing.T) {
	// Every frame distinct; with pixel_threshold 0, a near-zero trigger and
	// no minimum length every frame starts a new slide.
	var frames []*Frame
	for i := 0; i < 10; i++ {
		frames = append(frames, uniformFrame(uint64(i), time.Duration(i)*time.Second, 32, 24, uint8(i*25)))
	}
	settings := basicTestSettings()
	settings.PixelThreshold = 0
	settings.ChangeRatioThreshold = 0.001
	settings.MinimumSlideLength = 0

	res, err := Segment(context.Background(), NewSliceSource(frames), settings, nil)
	require.NoError(t, err)
	assert.Equal(t, 10, res.NrSlides())
}

func TestSegmentDeterministic(t *testing.T) {
	build := func() []*Frame {
		frames := sceneFrames([]uint8{10, 120, 230}, 10, 32, 24)
		frames[15] = uniformFrame(15, 15*time.Second, 32, 24, 255)
		return frames
	}

	first, err := Segment(context.Background(), NewSliceSource(build()), basicTestSettings(), nil)
	require.NoError(t, err)
	second, err := Segment(context.Background(), NewSliceSource(build()), basicTestSettings(), nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSegmentThresholdResponseIsMonotonic(t *testing.T) {
	// Five static scenes whose boundaries change a full, half, quarter and
	// eighth of the frame area, so the per-boundary change ratios are
	// 1.0, 0.5, 0.25 and 0.125.
	build := func() []*Frame {
		var frames []*Frame
		idx := uint64(0)
		for scene := 0; scene < 5; scene++ {
			for i := 0; i < 5; i++ {
				f := uniformFrame(idx, time.Duration(idx)*time.Second, 32, 32, 10)
				if scene >= 1 {
					paintRect(f, image.Rect(0, 0, 32, 32), 200)
				}
				if scene >= 2 {
					paintRect(f, image.Rect(0, 0, 32, 16), 10)
				}
				if scene >= 3 {
					paintRect(f, image.Rect(0, 0, 32, 8), 90)
				}
				if scene >= 4 {
					paintRect(f, image.Rect(0, 0, 32, 4), 160)
				}
				frames = append(frames, f)
				idx++
			}
		}
		return frames
	}

	thresholds := []float64{0.05, 0.2, 0.4, 0.6, 0.8, 0.95}
	wantSlides := []int{5, 4, 3, 2, 2, 2}

	prevCount := int(^uint(0) >> 1)
	for i, threshold := range thresholds {
		settings := basicTestSettings()
		settings.ChangeRatioThreshold = threshold
		res, err := Segment(context.Background(), NewSliceSource(build()), settings, nil)
		require.NoError(t, err)
		assert.Equal(t, wantSlides[i], res.NrSlides(), "threshold %v", threshold)
		assert.LessOrEqual(t, res.NrSlides(), prevCount,
			"raising the trigger to %v must not add slides", threshold)
		prevCount = res.NrSlides()
	}
}

func TestSegmentDegenerateInputs(t *testing.T) {
	t.Run("zero frames", func(t *testing.T) {
		res, err := Segment(context.Background(), NewSliceSource(nil), basicTestSettings(), nil)
		require.NoError(t, err)
		require.Equal(t, 1, res.NrSlides())
		assert.Equal(t, time.Duration(0), res.Slides[0].Start)
		assert.Equal(t, time.Duration(0), res.Slides[0].End)
	})

	t.Run("one frame", func(t *testing.T) {
		frames := []*Frame{uniformFrame(0, 5*time.Second, 32, 24, 40)}
		res, err := Segment(context.Background(), NewSliceSource(frames), basicTestSettings(), nil)
		require.NoError(t, err)
		require.Equal(t, 1, res.NrSlides())
		assert.Equal(t, 5*time.Second, res.Slides[0].Start)
		assert.Equal(t, 5*time.Second, res.Slides[0].End)
	})
}

func TestSegmentDecodeFailureReturnsConfirmedSlides(t *testing.T) {
	// Scene change at frame 10 is confirmed at frame 12; the read failure
	// right after must surface the confirmed slide but no partial trailing
	// one.
	frames := sceneFrames([]uint8{10, 230}, 10, 32, 24)[:13]
	src := &failingSource{frames: frames, err: fmt.Errorf("container truncated")}

	res, err := Segment(context.Background(), src, basicTestSettings(), nil)
	require.Error(t, err)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.EqualValues(t, 13, decodeErr.Frame)

	require.Equal(t, 1, res.NrSlides())
	assert.Equal(t, time.Duration(0), res.Slides[0].Start)
	assert.Equal(t, 10*time.Second, res.Slides[0].End)
}

func TestSegmentValidatesBeforeReadingFrames(t *testing.T) {
	src := &countingSource{}
	settings := basicTestSettings()
	settings.ChangeRatioThreshold = 2.0

	_, err := Segment(context.Background(), src, settings, nil)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Zero(t, src.calls, "no frame may be read for an invalid configuration")
}

func TestSegmentCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	frames := sceneFrames([]uint8{10}, 5, 32, 24)
	_, err := Segment(ctx, NewSliceSource(frames), basicTestSettings(), nil)
	assert.True(t, errors.Is(err, context.Canceled))
}
