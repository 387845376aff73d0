// Package toolutil provides small input helpers shared by go_article MCP tools
// and CLI commands.
package toolutil

import (
	"errors"
	"strings"
)

// ErrURLRequired is returned when a tool is called without a video URL.
var ErrURLRequired = errors.New("url is required")

// NormLangs splits a comma-separated language list: "zh, en" → [zh en].
// An empty list returns nil so callers fall back to their defaults.
func NormLangs(list string) []string {
	var out []string
	for _, l := range strings.Split(list, ",") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// RequireURL trims u and rejects empty input.
func RequireURL(u string) (string, error) {
	u = strings.TrimSpace(u)
	if u == "" {
		return "", ErrURLRequired
	}
	return u, nil
}

// ClampLimit returns def for non-positive n and caps n at ceiling.
func ClampLimit(n, def, ceiling int) int {
	if n <= 0 {
		return def
	}
	if n > ceiling {
		return ceiling
	}
	return n
}
