package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", `{"a":1};var x`, `{"a":1}`},
		{"nested", `{"a":{"b":[1,2]}} trailing`, `{"a":{"b":[1,2]}}`},
		{"brace in string", `{"a":"}{"} rest`, `{"a":"}{"}`},
		{"escaped quote", `{"a":"x\"}"} rest`, `{"a":"x\"}"}`},
		{"not object", `[1,2]`, ""},
		{"unterminated", `{"a":1`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(extractJSON([]byte(tt.in))))
		})
	}
}

func TestExtractTranscriptToken(t *testing.T) {
	data := []byte(`{"x":{"getTranscriptEndpoint":{"params":"CgtB%3D%3D"}}}`)
	token, err := extractTranscriptToken(data)
	require.NoError(t, err)
	assert.Equal(t, "CgtB==", token)

	_, err = extractTranscriptToken([]byte(`{}`))
	assert.Error(t, err)
}

func TestPickBestTrack(t *testing.T) {
	tracks := []captionTrack{
		{BaseURL: "u-en-asr", LanguageCode: "en", Kind: "asr"},
		{BaseURL: "u-zh-asr", LanguageCode: "zh", Kind: "asr"},
		{BaseURL: "u-zh", LanguageCode: "zh"},
		{BaseURL: "u-de&exp=xpe", LanguageCode: "de"},
	}
	tests := []struct {
		name  string
		langs []string
		want  string
	}{
		{"manual preferred", []string{"zh", "en"}, "u-zh"},
		{"auto when only asr", []string{"en"}, "u-en-asr"},
		{"potoken skipped, english fallback", []string{"de"}, "u-en-asr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pickBestTrack(tracks, tt.langs)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.BaseURL)
		})
	}

	_, ok := pickBestTrack([]captionTrack{{BaseURL: "a&exp=xpe"}}, []string{"en"})
	assert.False(t, ok)
}

func TestParseTranscriptSegments(t *testing.T) {
	raw := `{"actions":[{"updateEngagementPanelAction":{"content":{"transcriptRenderer":{"content":{"transcriptSearchPanelRenderer":{"body":{"transcriptSegmentListRenderer":{"initialSegments":[
		{"transcriptSegmentRenderer":{"startMs":"1500","endMs":"4000","snippet":{"runs":[{"text":"Hello "},{"text":"world"}]}}},
		{"transcriptSegmentRenderer":{"startMs":"4000","endMs":"5000","snippet":{"runs":[{"text":"  "}]}}},
		{}
	]}}}}}}}}]}`
	var resp ytGetTranscriptResp
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))

	segs := parseTranscriptSegments(resp)
	require.Len(t, segs, 1)
	assert.InDelta(t, 1.5, segs[0].Start, 1e-9)
	assert.InDelta(t, 2.5, segs[0].Duration, 1e-9)
	assert.Equal(t, "Hello world", segs[0].Text)
}

func TestYouTubeClientFetchViaWatchPage(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "vid123", r.URL.Query().Get("v"))
		player := fmt.Sprintf(`{"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[{"baseUrl":"%s/timedtext?lang=en","languageCode":"en"}]}}}`, srv.URL)
		fmt.Fprintf(w, `<html><script>var ytInitialPlayerResponse = %s;var other = 1;</script></html>`, player)
	})
	mux.HandleFunc("/timedtext", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?><transcript><text start="0.5" dur="2">Hi &amp;amp; welcome</text><text start="3" dur="1.5">next</text></transcript>`)
	})

	c := NewYouTubeClient(srv.Client(), nil, nil)
	c.baseURL = srv.URL

	segs, err := c.Fetch(context.Background(), "vid123", []string{"en"})
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.InDelta(t, 0.5, segs[0].Start, 1e-9)
	assert.Equal(t, "Hi & welcome", segs[0].Text)
	assert.Equal(t, "next", segs[1].Text)
}

func TestYouTubeClientFetchReturnsFirstError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewYouTubeClient(srv.Client(), nil, nil)
	c.baseURL = srv.URL

	_, err := c.Fetch(context.Background(), "vid123", []string{"en"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ytInitialPlayerResponse not found")
}
