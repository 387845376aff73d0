package transcript

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidVideoURL is returned when a URL carries no recognisable video id.
var ErrInvalidVideoURL = errors.New("invalid video url")

// ExtractVideoID returns the video id from youtu.be short links, watch URLs,
// /shorts/ and /embed/ paths.
func ExtractVideoID(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidVideoURL, rawURL)
	}
	host := strings.ToLower(u.Hostname())

	if host == "youtu.be" {
		if id := strings.Trim(u.Path, "/"); id != "" {
			return id, nil
		}
	}

	if strings.Contains(host, "youtube.com") {
		if u.Path == "/watch" {
			if id := u.Query().Get("v"); id != "" {
				return id, nil
			}
		}
		for _, prefix := range []string{"/shorts/", "/embed/"} {
			if !strings.HasPrefix(u.Path, prefix) {
				continue
			}
			parts := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
			if len(parts) >= 2 {
				return parts[1], nil
			}
		}
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidVideoURL, rawURL)
}

// WatchURL builds the canonical watch page URL for a video id.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + url.QueryEscape(videoID)
}
