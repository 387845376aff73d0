package transcript

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_article/internal/engine"
)

// Key aliases models use for segment fields, tried in order.
var (
	timestampKeys = []string{"timestamp", "time", "start", "start_time"}
	textKeys      = []string{"text", "content", "transcript"}
)

// AdaptModelResponse converts a model transcription response into a
// finalized segment sequence. The response is expected to be JSON of the
// form {"segments":[{"timestamp":"HH:MM:SS","text":"..."}]} or a bare
// segment array, possibly fenced or wrapped in prose. Malformed output is
// expected: it yields an empty sequence, never an error. Unparseable
// timestamps read as 0.
func AdaptModelResponse(text string) []Segment {
	entries := decodeSegmentEntries(text)
	if len(entries) == 0 {
		return nil
	}

	segs := make([]Segment, 0, len(entries))
	for _, raw := range entries {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		body := CleanText(firstString(item, textKeys))
		if body == "" {
			continue
		}
		segs = append(segs, Segment{Start: entryStart(item), Text: body})
	}
	return Finalize(segs)
}

func decodeSegmentEntries(text string) []any {
	for _, candidate := range engine.JSONCandidates(text) {
		var v any
		if err := json.Unmarshal([]byte(candidate), &v); err != nil {
			continue
		}
		switch doc := v.(type) {
		case []any:
			return doc
		case map[string]any:
			list, _ := doc["segments"].([]any)
			return list
		}
	}
	return nil
}

// entryStart reads the first usable timestamp alias. JSON numbers are
// seconds; strings go through the lenient codec.
func entryStart(item map[string]any) float64 {
	for _, key := range timestampKeys {
		switch v := item[key].(type) {
		case nil:
			continue
		case float64:
			if v == 0 {
				continue
			}
			return max(0, v)
		case string:
			if strings.TrimSpace(v) == "" {
				continue
			}
			secs := ParseLenient(v)
			if secs == 0 && !looksLikeZero(v) {
				slog.Debug("transcript: unparseable model timestamp", slog.String("value", v))
			}
			return secs
		default:
			return ParseLenient(fmt.Sprint(v))
		}
	}
	return 0
}

func looksLikeZero(s string) bool {
	return strings.Trim(strings.TrimSpace(s), "0:.") == ""
}

func firstString(item map[string]any, keys []string) string {
	for _, key := range keys {
		switch v := item[key].(type) {
		case nil:
			continue
		case string:
			if strings.TrimSpace(v) != "" {
				return v
			}
		default:
			return fmt.Sprint(v)
		}
	}
	return ""
}
