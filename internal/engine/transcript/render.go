package transcript

import "strings"

// Render flattens segments into "[HH:MM:SS] text" lines in the given order.
func Render(segs []Segment) string {
	lines := make([]string, len(segs))
	for i, s := range segs {
		lines[i] = "[" + Format(s.Start) + "] " + s.Text
	}
	return strings.Join(lines, "\n")
}
