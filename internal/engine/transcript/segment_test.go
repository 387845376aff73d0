package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", CleanText("  a\nb\r\nc  "))
	assert.Equal(t, "", CleanText("\n \n"))
}

func TestFinalize(t *testing.T) {
	segs := Finalize([]Segment{
		{Start: 10, Text: "third"},
		{Start: -2, Text: "first"},
		{Start: 5, Duration: 2, Text: "second"},
		{Start: 7, Text: "  \n "},
	})
	require.Len(t, segs, 3)

	assert.Equal(t, []string{"first", "second", "third"}, []string{segs[0].Text, segs[1].Text, segs[2].Text})
	assert.Zero(t, segs[0].Start)
	assert.InDelta(t, 5, segs[0].Duration, 1e-9)
	assert.InDelta(t, 2, segs[1].Duration, 1e-9, "known durations are kept")
	assert.InDelta(t, DefaultLastDuration, segs[2].Duration, 1e-9)
}

func TestFinalizeStableForEqualStarts(t *testing.T) {
	segs := Finalize([]Segment{
		{Start: 1, Text: "a"},
		{Start: 1, Text: "b"},
	})
	require.Len(t, segs, 2)
	assert.Equal(t, "a", segs[0].Text)
	assert.Zero(t, segs[0].Duration)
	assert.Equal(t, "b", segs[1].Text)
}

func TestFinalizeEmpty(t *testing.T) {
	assert.Empty(t, Finalize(nil))
}
