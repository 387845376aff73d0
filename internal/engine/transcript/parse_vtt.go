package transcript

import (
	"errors"
	"html"
	"regexp"
	"strconv"
	"strings"
)

var (
	blankLineRe = regexp.MustCompile(`\n\s*\n`)
	markupTagRe = regexp.MustCompile(`<[^>]+>`)
)

// ParseVTT decodes WebVTT-style cue text. Blocks are separated by blank
// lines; the time range sits on the first or second line of a block (the
// second when a cue id precedes it). Header, NOTE and malformed blocks are
// skipped without affecting the other cues.
func ParseVTT(content string) []Segment {
	var segs []Segment
	for _, block := range blankLineRe.Split(strings.ReplaceAll(content, "\r", ""), -1) {
		seg, ok := parseCue(block)
		if ok {
			segs = append(segs, seg)
		}
	}
	return segs
}

func parseCue(block string) (Segment, bool) {
	var lines []string
	for _, line := range strings.Split(block, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return Segment{}, false
	}

	timeIdx := 0
	if !strings.Contains(lines[0], "-->") {
		timeIdx = 1
	}
	if timeIdx >= len(lines) || !strings.Contains(lines[timeIdx], "-->") {
		return Segment{}, false
	}
	textLines := lines[timeIdx+1:]
	if len(textLines) == 0 {
		return Segment{}, false
	}

	startRaw, endRaw, _ := strings.Cut(lines[timeIdx], "-->")
	endFields := strings.Fields(endRaw)
	if len(endFields) == 0 {
		return Segment{}, false
	}
	start, err := parseCueTime(strings.TrimSpace(startRaw))
	if err != nil {
		return Segment{}, false
	}
	end, err := parseCueTime(endFields[0])
	if err != nil {
		return Segment{}, false
	}

	text := markupTagRe.ReplaceAllString(strings.Join(textLines, " "), "")
	text = CleanText(html.UnescapeString(text))
	if text == "" {
		return Segment{}, false
	}
	return Segment{
		Start:    max(0, start),
		Duration: max(0, end-start),
		Text:     text,
	}, true
}

var errCueTime = errors.New("invalid cue time")

// parseCueTime reads MM:SS.mmm or HH:MM:SS.mmm; the millisecond separator
// may be '.' or ','.
func parseCueTime(v string) (float64, error) {
	parts := strings.Split(strings.ReplaceAll(v, ",", "."), ":")
	var h, m int
	var secRaw string
	var err error
	switch len(parts) {
	case 2:
		if m, err = strconv.Atoi(parts[0]); err != nil {
			return 0, errCueTime
		}
		secRaw = parts[1]
	case 3:
		if h, err = strconv.Atoi(parts[0]); err != nil {
			return 0, errCueTime
		}
		if m, err = strconv.Atoi(parts[1]); err != nil {
			return 0, errCueTime
		}
		secRaw = parts[2]
	default:
		return 0, errCueTime
	}
	sec, err := strconv.ParseFloat(secRaw, 64)
	if err != nil {
		return 0, errCueTime
	}
	return float64(h*3600+m*60) + sec, nil
}
