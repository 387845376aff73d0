package transcript

import (
	"encoding/json"
	"html"
	"strings"
)

// json3Event is one timing event of a YouTube json3 caption track.
type json3Event struct {
	TStartMs    float64 `json:"tStartMs"`
	DDurationMs float64 `json:"dDurationMs"`
	Segs        []struct {
		UTF8 string `json:"utf8"`
	} `json:"segs"`
}

// ParseJSON3 decodes a json3 caption track: events with millisecond offsets
// and text fragments that are concatenated per event. Events that fail to
// decode or carry no text are skipped. A document that is not JSON yields nil.
func ParseJSON3(content string) []Segment {
	var doc struct {
		Events []json.RawMessage `json:"events"`
	}
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil
	}

	var segs []Segment
	for _, raw := range doc.Events {
		var ev json3Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			continue
		}
		var sb strings.Builder
		for _, part := range ev.Segs {
			sb.WriteString(part.UTF8)
		}
		text := CleanText(html.UnescapeString(sb.String()))
		if text == "" {
			continue
		}
		segs = append(segs, Segment{
			Start:    max(0, ev.TStartMs/1000),
			Duration: max(0, ev.DDurationMs/1000),
			Text:     text,
		})
	}
	return segs
}
