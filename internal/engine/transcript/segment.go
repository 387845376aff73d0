// Package transcript turns caption tracks, transcript APIs and model
// transcriptions of a video into one ordered sequence of timestamped
// segments, and renders that sequence for the article planner.
package transcript

import (
	"sort"
	"strings"
)

// DefaultLastDuration is the duration given to the final segment when its
// real length is unknown.
const DefaultLastDuration = 8.0

// Segment is one timestamped unit of transcript text.
type Segment struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"` // 0 = unknown, filled by Finalize
	Text     string  `json:"text"`
}

var newlineReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// CleanText collapses newlines to spaces and trims the result.
func CleanText(s string) string {
	return strings.TrimSpace(newlineReplacer.Replace(s))
}

// Finalize returns a copy of segs that satisfies the sequence invariants:
// text cleaned and non-empty, start and duration non-negative, sorted by
// start, and every unknown duration filled with the gap to the next start.
// The last segment falls back to DefaultLastDuration.
func Finalize(segs []Segment) []Segment {
	out := make([]Segment, 0, len(segs))
	for _, s := range segs {
		s.Text = CleanText(s.Text)
		if s.Text == "" {
			continue
		}
		s.Start = max(0, s.Start)
		s.Duration = max(0, s.Duration)
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })

	for i := range out {
		if out[i].Duration > 0 {
			continue
		}
		if i+1 < len(out) {
			out[i].Duration = max(0, out[i+1].Start-out[i].Start)
		} else {
			out[i].Duration = DefaultLastDuration
		}
	}
	return out
}
