package transcript

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidTimestamp is returned by Parse for input that is not a recognised
// timestamp shape.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

var (
	// clockFullRe matches a whole-string MM:SS or HH:MM:SS value. The leading
	// field is unbounded so "125:30" reads as 125 minutes.
	clockFullRe = regexp.MustCompile(`^(\d+):(\d{2})(?::(\d{2}))?(\.\d+)?$`)

	// clockEmbeddedRe finds the first clock value inside free text,
	// e.g. "around 01:02:03 the speaker says".
	clockEmbeddedRe = regexp.MustCompile(`(\d{1,2}):(\d{2})(?::(\d{2}))?(\.\d+)?`)

	// decimalRe matches plain decimal seconds; the fraction is discarded.
	decimalRe = regexp.MustCompile(`^(\d+)(?:\.\d+)?$`)
)

// Parse converts a timestamp string to seconds. Accepted shapes are whole
// seconds ("75"), MM:SS, HH:MM:SS, free text containing a clock value and
// decimal seconds ("75.9" reads as 75). Anything else returns
// ErrInvalidTimestamp. Use Parse for structurally validated input.
func Parse(raw string) (float64, error) {
	secs, ok := parse(raw, false)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, raw)
	}
	return secs, nil
}

// ParseLenient is Parse for untrusted or model-generated input: it never
// fails and returns 0 when nothing usable is found. Fractional seconds inside
// clock values are kept ("01:02.5" is 62.5).
func ParseLenient(raw string) float64 {
	secs, _ := parse(raw, true)
	return secs
}

func parse(raw string, keepFraction bool) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if isDigits(s) {
		return finite(strconv.ParseFloat(s, 64))
	}
	if m := clockFullRe.FindStringSubmatch(s); m != nil {
		return clockSeconds(m, keepFraction)
	}
	if m := clockEmbeddedRe.FindStringSubmatch(s); m != nil {
		return clockSeconds(m, keepFraction)
	}
	if m := decimalRe.FindStringSubmatch(s); m != nil {
		return finite(strconv.ParseFloat(m[1], 64))
	}
	return 0, false
}

// finite rejects parse errors, including range errors, and non-finite values.
func finite(n float64, err error) (float64, bool) {
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, false
	}
	return n, true
}

// clockSeconds turns regexp groups (a, b, optional c, optional fraction)
// into seconds. With two fields they are minutes and seconds, with three
// hours, minutes and seconds.
// A leading field too large for an int fails the parse.
func clockSeconds(m []string, keepFraction bool) (float64, bool) {
	fields := make([]float64, 0, 3)
	for _, g := range m[1:4] {
		if g == "" {
			continue
		}
		n, err := strconv.Atoi(g)
		if err != nil {
			return 0, false
		}
		fields = append(fields, float64(n))
	}
	var total float64
	if len(fields) == 2 {
		total = fields[0]*60 + fields[1]
	} else {
		total = fields[0]*3600 + fields[1]*60 + fields[2]
	}
	if keepFraction && m[4] != "" {
		if frac, err := strconv.ParseFloat("0"+m[4], 64); err == nil {
			total += frac
		}
	}
	return total, true
}

// maxFormatSeconds is the largest value Format renders, well inside int64.
const maxFormatSeconds = float64(1 << 62)

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// Format renders seconds as zero-padded HH:MM:SS, rounding to the nearest
// whole second. Negative and non-finite input renders as 00:00:00; values
// past maxFormatSeconds are capped.
func Format(seconds float64) string {
	switch {
	case math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0:
		seconds = 0
	case seconds > maxFormatSeconds:
		seconds = maxFormatSeconds
	}
	total := int64(math.Round(seconds))
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// Normalize parses raw leniently and formats the result, so any model-provided
// timestamp comes back as HH:MM:SS ("00:00:00" when unparseable).
func Normalize(raw string) string {
	return Format(ParseLenient(raw))
}

// Clamp keeps seconds inside a video of the given duration. A non-positive
// duration means unknown and only negative values are corrected. Values at
// or past the end land one second before it.
func Clamp(seconds, duration float64) float64 {
	if duration <= 0 {
		return math.Max(0, seconds)
	}
	if seconds >= duration {
		return math.Max(0, duration-1)
	}
	return math.Max(0, seconds)
}
