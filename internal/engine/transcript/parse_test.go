package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON3(t *testing.T) {
	t.Run("basic event", func(t *testing.T) {
		segs := ParseJSON3(`{"events":[{"tStartMs":1500,"dDurationMs":2500,"segs":[{"utf8":"Hello"}]}]}`)
		require.Len(t, segs, 1)
		assert.Equal(t, Segment{Start: 1.5, Duration: 2.5, Text: "Hello"}, segs[0])
	})

	t.Run("fragments concatenated without separator", func(t *testing.T) {
		segs := ParseJSON3(`{"events":[{"tStartMs":1500,"dDurationMs":2500,"segs":[{"utf8":"Hel"},{"utf8":"lo"}]}]}`)
		require.Len(t, segs, 1)
		assert.Equal(t, Segment{Start: 1.5, Duration: 2.5, Text: "Hello"}, segs[0])
	})

	t.Run("fragments joined and decoded", func(t *testing.T) {
		segs := ParseJSON3(`{"events":[
			{"tStartMs":0,"dDurationMs":1000,"segs":[{"utf8":"Tom"},{"utf8":" &amp;\nJerry"}]},
			{"tStartMs":1000,"segs":[{"utf8":"\n"}]},
			{"tStartMs":2000}
		]}`)
		require.Len(t, segs, 1)
		assert.Equal(t, "Tom & Jerry", segs[0].Text)
	})

	t.Run("malformed event skipped", func(t *testing.T) {
		segs := ParseJSON3(`{"events":[{"tStartMs":"oops","segs":[{"utf8":"bad"}]},{"tStartMs":3000,"segs":[{"utf8":"good"}]}]}`)
		require.Len(t, segs, 1)
		assert.Equal(t, "good", segs[0].Text)
		assert.InDelta(t, 3, segs[0].Start, 1e-9)
	})

	t.Run("not json", func(t *testing.T) {
		assert.Empty(t, ParseJSON3("<xml/>"))
	})
}

func TestParseVTT(t *testing.T) {
	t.Run("basic cue", func(t *testing.T) {
		segs := ParseVTT("WEBVTT\n\n00:00:01.000 --> 00:00:03.000\nHello\nworld\n")
		require.Len(t, segs, 1)
		assert.Equal(t, Segment{Start: 1, Duration: 2, Text: "Hello world"}, segs[0])
	})

	t.Run("inline markup stripped", func(t *testing.T) {
		segs := ParseVTT("WEBVTT\n\n00:00:01.000 --> 00:00:03.000\nHello <b>world</b>\n")
		require.Len(t, segs, 1)
		assert.Equal(t, Segment{Start: 1.0, Duration: 2.0, Text: "Hello world"}, segs[0])
	})

	t.Run("cue ids comma separator and settings", func(t *testing.T) {
		content := "WEBVTT\r\nKind: captions\r\n\r\n" +
			"1\r\n00:01.500 --> 00:02,000 align:start position:0%\r\n<c>tagged</c> &amp; text\r\n\r\n" +
			"NOTE a comment\r\n\r\n" +
			"2\r\n00:00:05.000 --> 00:00:04.000\r\nbackwards\r\n"
		segs := ParseVTT(content)
		require.Len(t, segs, 2)
		assert.InDelta(t, 1.5, segs[0].Start, 1e-9)
		assert.InDelta(t, 0.5, segs[0].Duration, 1e-9)
		assert.Equal(t, "tagged & text", segs[0].Text)
		assert.Zero(t, segs[1].Duration)
	})

	t.Run("malformed block does not abort", func(t *testing.T) {
		segs := ParseVTT("xx:yy --> 00:01.000\nbroken\n\n00:02.000 --> 00:03.000\nfine\n\n00:04.000 --> 00:05.000\n<i></i>\n")
		require.Len(t, segs, 1)
		assert.Equal(t, "fine", segs[0].Text)
	})
}

func TestParseTimedTextAndSRV3(t *testing.T) {
	srv1 := `<transcript><text start="1.25" dur="2">it&amp;#39;s here</text><text start="bad">x</text><text start="4">tail</text></transcript>`
	segs := ParseTimedText(srv1)
	require.Len(t, segs, 2)
	assert.Equal(t, Segment{Start: 1.25, Duration: 2, Text: "it's here"}, segs[0])
	assert.Zero(t, segs[1].Duration)

	srv3 := `<timedtext format="3"><body><p t="1000" d="1500"><s>word</s><s t="200"> two</s></p><p t="3000" d="10"></p></body></timedtext>`
	segs = ParseSRV3(srv3)
	require.Len(t, segs, 1)
	assert.Equal(t, Segment{Start: 1, Duration: 1.5, Text: "word two"}, segs[0])

	truncated := `<transcript><text start="1" dur="1">kept</text><text start="2"`
	assert.Len(t, ParseTimedText(truncated), 1)
}

func TestParseTrackDispatch(t *testing.T) {
	assert.Len(t, ParseTrack("JSON3", `{"events":[{"tStartMs":0,"segs":[{"utf8":"a"}]}]}`), 1)
	assert.Len(t, ParseTrack("vtt", "00:00.000 --> 00:01.000\na"), 1)
	assert.Len(t, ParseTrack("xml", `<transcript><text start="0">a</text></transcript>`), 1)
	assert.Nil(t, ParseTrack("ttml", "<tt/>"))
	assert.True(t, Supported("srv3"))
	assert.False(t, Supported("ttml"))
}
