package slides

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunkAt(settings Settings, start, end time.Duration, starts []time.Duration, reps []uint64) ChunkResult {
	r := &Result{Algorithm: settings.Algorithm, Settings: settings}
	for i, s := range starts {
		e := end
		if i+1 < len(starts) {
			e = starts[i+1]
		}
		r.Slides = append(r.Slides, Slide{Start: s, End: e, RepresentativeFrame: reps[i]})
	}
	return ChunkResult{Result: r, Start: start, End: end}
}

func TestStitchPrefersLongerConfirmedRun(t *testing.T) {
	settings := basicTestSettings()

	// Chunk A saw a short, dubious slide inside the overlap; chunk B (which
	// had more context) saw one solid slide through it.
	a := chunkAt(settings, 0, 60*time.Second,
		[]time.Duration{0, 20 * time.Second, 48 * time.Second, 52 * time.Second},
		[]uint64{5, 30, 49, 55})
	b := chunkAt(settings, 40*time.Second, 100*time.Second,
		[]time.Duration{40 * time.Second, 50 * time.Second, 80 * time.Second},
		[]uint64{42, 60, 88})

	merged, err := Stitch(a, b)
	require.NoError(t, err)

	var starts []time.Duration
	for _, s := range merged.Slides {
		starts = append(starts, s.Start)
	}
	// A's pre-window boundary at 20s and B's window and post-window
	// boundaries at 50s and 80s survive; A's 48s/52s pair does not.
	assert.Equal(t, []time.Duration{0, 20 * time.Second, 50 * time.Second, 80 * time.Second}, starts)
	assert.Equal(t, 100*time.Second, merged.Slides[len(merged.Slides)-1].End)

	for i := 0; i+1 < len(merged.Slides); i++ {
		assert.Equal(t, merged.Slides[i].End, merged.Slides[i+1].Start)
	}
}

func TestStitchDeterministic(t *testing.T) {
	settings := basicTestSettings()
	a := chunkAt(settings, 0, 60*time.Second,
		[]time.Duration{0, 25 * time.Second, 45 * time.Second}, []uint64{10, 30, 50})
	b := chunkAt(settings, 40*time.Second, 90*time.Second,
		[]time.Duration{40 * time.Second, 46 * time.Second, 70 * time.Second}, []uint64{41, 50, 75})

	first, err := Stitch(a, b)
	require.NoError(t, err)
	second, err := Stitch(a, b)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestStitchEnforcesMinimumSlideLength(t *testing.T) {
	settings := basicTestSettings()
	settings.MinimumSlideLength = 10

	a := chunkAt(settings, 0, 60*time.Second,
		[]time.Duration{0, 38 * time.Second, 55 * time.Second}, []uint64{5, 45, 57})
	// B wins the window, but its boundary at 47s lands 9s after A's kept
	// boundary at 38s, under the minimum, so it must be dropped.
	b := chunkAt(settings, 40*time.Second, 100*time.Second,
		[]time.Duration{40 * time.Second, 47 * time.Second, 80 * time.Second}, []uint64{41, 50, 85})

	merged, err := Stitch(a, b)
	require.NoError(t, err)

	var starts []time.Duration
	for _, s := range merged.Slides {
		starts = append(starts, s.Start)
	}
	assert.Equal(t, []time.Duration{0, 38 * time.Second, 80 * time.Second}, starts)
	for i := 0; i+1 < len(merged.Slides); i++ {
		assert.GreaterOrEqual(t, merged.Slides[i].Duration(), 10*time.Second)
	}
}

func TestStitchRejectsBadInput(t *testing.T) {
	settings := basicTestSettings()
	a := chunkAt(settings, 0, 30*time.Second, []time.Duration{0}, []uint64{5})
	disjoint := chunkAt(settings, 60*time.Second, 90*time.Second, []time.Duration{60 * time.Second}, []uint64{70})
	_, err := Stitch(a, disjoint)
	assert.Error(t, err)

	other := basicTestSettings()
	other.ChangeRatioThreshold = 0.9
	mismatched := chunkAt(other, 20*time.Second, 50*time.Second, []time.Duration{20 * time.Second}, []uint64{30})
	_, err = Stitch(a, mismatched)
	assert.Error(t, err)
}
