package transcript

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankTracks(t *testing.T) {
	idx := TrackIndex{
		OriginSubtitles: {
			"en": {{URL: "sub-en-vtt", Ext: "vtt"}},
			"fr": {{URL: "sub-fr-json3", Ext: "json3"}},
		},
		OriginAutomaticCaptions: {
			"zh": {
				{URL: "auto-zh-ttml", Ext: "ttml"},
				{URL: "auto-zh-json3", Ext: "json3"},
				{URL: "", Ext: "vtt"},
				{URL: "auto-zh-noext", Ext: ""},
			},
			"en": {{URL: "auto-en-json3", Ext: "json3"}},
		},
	}

	got := RankTracks(idx, []string{"zh", "en"})
	urls := make([]string, len(got))
	for i, c := range got {
		urls[i] = c.URL
	}
	assert.Equal(t, []string{
		"auto-zh-json3",
		"auto-zh-ttml",
		"sub-en-vtt",
		"auto-en-json3",
		"sub-fr-json3",
	}, urls)

	require.Len(t, got, 5)
	assert.Equal(t, 3, got[4].LanguageRank, "unlisted languages rank after len(langs)")
	assert.Equal(t, OriginAutomaticCaptions, got[0].Origin)
	assert.Equal(t, 3, got[1].FormatRank)
}

func TestRankTracksDuplicateLanguages(t *testing.T) {
	idx := TrackIndex{OriginSubtitles: {
		"en": {{URL: "en", Ext: "vtt"}},
		"zh": {{URL: "zh", Ext: "vtt"}},
	}}
	got := RankTracks(idx, []string{"en", "zh", "en"})
	require.Len(t, got, 2)
	assert.Equal(t, "en", got[0].URL)
	assert.Zero(t, got[0].LanguageRank)
}

func TestRankTracksUnknownFormat(t *testing.T) {
	idx := TrackIndex{OriginSubtitles: {"en": {
		{URL: "a", Ext: "weird"},
		{URL: "b", Ext: "srv1"},
	}}}
	got := RankTracks(idx, []string{"en"})
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].URL)
	assert.Equal(t, unknownFormatRank, got[1].FormatRank)
}

func TestRankTracksEmpty(t *testing.T) {
	assert.Empty(t, RankTracks(nil, []string{"en"}))
	assert.Empty(t, RankTracks(TrackIndex{}, nil))
}

func TestRankTracksInOrderKeepsListing(t *testing.T) {
	idx := TrackIndex{OriginSubtitles: {
		"ja": {{URL: "ja", Ext: "vtt"}},
		"de": {{URL: "de", Ext: "vtt"}},
		"ko": {{URL: "ko", Ext: "vtt"}},
		"en": {{URL: "en", Ext: "vtt"}},
	}}
	order := LanguageOrder{OriginSubtitles: {"ko", "ja", "missing", "de"}}

	got := RankTracksInOrder(idx, order, []string{"en"})
	urls := make([]string, len(got))
	for i, c := range got {
		urls[i] = c.URL
	}
	assert.Equal(t, []string{"en", "ko", "ja", "de"}, urls)
}

func TestVideoInfoRecordsLanguageOrder(t *testing.T) {
	var info VideoInfo
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "abc",
		"duration": 61.5,
		"subtitles": {"pt": [{"url": "pt", "ext": "vtt"}], "de": [{"url": "de", "ext": "vtt"}]},
		"automatic_captions": {"ru": [{"url": "ru", "ext": "json3"}], "ar": [{"url": "ar", "ext": "json3"}]}
	}`), &info))

	assert.Equal(t, "abc", info.ID)
	assert.InDelta(t, 61.5, info.Duration, 1e-9)
	assert.Equal(t, LanguageOrder{
		OriginSubtitles:         {"pt", "de"},
		OriginAutomaticCaptions: {"ru", "ar"},
	}, info.order)

	got := RankTracksInOrder(info.Tracks(), info.order, []string{"en"})
	require.Len(t, got, 4)
	assert.Equal(t, []string{"pt", "de", "ru", "ar"}, []string{got[0].URL, got[1].URL, got[2].URL, got[3].URL})
}

func TestVideoInfoWithoutCaptions(t *testing.T) {
	var info VideoInfo
	require.NoError(t, json.Unmarshal([]byte(`{"id":"abc","subtitles":null}`), &info))
	assert.Empty(t, RankTracksInOrder(info.Tracks(), info.order, nil))
}
