package slides

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTimestamp(t *testing.T) {
	cases := map[time.Duration]string{
		0:                        "00:00:00.000",
		10 * time.Second:         "00:00:10.000",
		90*time.Minute + 3*time.Second + 456*time.Millisecond: "01:30:03.456",
		-time.Second: "00:00:00.000",
	}
	for d, want := range cases {
		assert.Equal(t, want, FormatTimestamp(d))
	}
}

func TestResultMetadata(t *testing.T) {
	res := &Result{
		Slides: []Slide{
			{Start: 0, End: 10 * time.Second, RepresentativeFrame: 4},
			{Start: 10 * time.Second, End: 29 * time.Second, RepresentativeFrame: 19},
		},
		Algorithm: AlgorithmBasic,
		Settings:  basicTestSettings(),
	}

	meta, err := res.Metadata([]string{"preview-a", "preview-b"})
	require.NoError(t, err)
	assert.Equal(t, 2, meta.NrSlides)
	assert.Equal(t, []string{"00:00:00.000", "00:00:10.000", "preview-a"}, meta.ListSlides[0])
	assert.Equal(t, []string{"00:00:10.000", "00:00:29.000", "preview-b"}, meta.ListSlides[1])

	raw, err := json.Marshal(meta)
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	for _, key := range []string{"listslides", "nrslides", "algorithm", "settings"} {
		assert.Contains(t, doc, key)
	}

	_, err = res.Metadata([]string{"only-one"})
	assert.Error(t, err, "preview ids must match the slide count")
}

func TestWebVTTChapters(t *testing.T) {
	res := &Result{
		Slides: []Slide{
			{Start: 0, End: 10 * time.Second},
			{Start: 10 * time.Second, End: 29*time.Second + 500*time.Millisecond},
		},
	}

	want := "WEBVTT\n\n" +
		"00:00:00.000 --> 00:00:10.000\nSlide 1\n\n" +
		"00:00:10.000 --> 00:00:29.500\nSlide 2\n\n"
	assert.Equal(t, want, res.WebVTTChapters())
}

func TestSlideMidpoint(t *testing.T) {
	s := Slide{Start: 10 * time.Second, End: 20 * time.Second}
	assert.Equal(t, 15*time.Second, s.Midpoint())
	assert.Equal(t, 10*time.Second, s.Duration())
}
