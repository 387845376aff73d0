package sources

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_article/internal/engine"
)

const (
	defaultTrackTimeout = 20 * time.Second
	maxTrackBytes       = 8 * 1024 * 1024
)

// TrackDownloader fetches caption track bodies discovered by yt-dlp.
type TrackDownloader struct {
	http    *http.Client
	limiter *rate.Limiter
	timeout time.Duration
	logger  *slog.Logger
}

// NewTrackDownloader creates a downloader. rps <= 0 disables rate limiting.
// The client's own Timeout is dropped so timeout alone bounds each download.
func NewTrackDownloader(httpClient *http.Client, timeout time.Duration, rps float64, logger *slog.Logger) *TrackDownloader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if httpClient.Timeout > 0 {
		c := *httpClient
		c.Timeout = 0
		httpClient = &c
	}
	if timeout <= 0 {
		timeout = defaultTrackTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	d := &TrackDownloader{http: httpClient, timeout: timeout, logger: logger}
	if rps > 0 {
		d.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return d
}

// Get downloads a caption track and returns its body decoded to UTF-8.
func (d *TrackDownloader) Get(ctx context.Context, trackURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("track rate limit: %w", err)
		}
	}

	engine.IncrCaptionTrackDownload()
	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.RandomUserAgent())
		return d.http.Do(req)
	})
	if err != nil {
		engine.IncrCaptionTrackError()
		return "", fmt.Errorf("track download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		engine.IncrCaptionTrackError()
		return "", fmt.Errorf("track status %d", resp.StatusCode)
	}

	reader, err := charset.NewReader(io.LimitReader(resp.Body, maxTrackBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		d.logger.Debug("track: unknown charset, reading raw", slog.Any("error", err))
		reader = io.LimitReader(resp.Body, maxTrackBytes)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		engine.IncrCaptionTrackError()
		return "", fmt.Errorf("read track: %w", err)
	}
	return string(body), nil
}
