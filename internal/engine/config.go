package engine

import (
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string
	LLMModel           string
	LLMTemperature     float64
	LLMMaxTokens       int
	LLMClient          *llm.Client

	GeminiAPIKey            string
	GeminiAPIBase           string
	GeminiTranscribeModel   string
	GeminiImageModel        string
	GeminiTranscribeEnabled bool

	YtDlpPath        string
	YtDlpCookiesFile string
	FFmpegPath       string

	TranscriptLangs []string
	FetchTimeout    time.Duration
	TrackTimeout    time.Duration // per caption-track download
	TrackRPS        float64       // caption-track download rate limit

	RedisURL             string
	CacheTTL             time.Duration
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration

	OSSAccessKeyID     string
	OSSAccessKeySecret string
	OSSEndpoint        string
	OSSBucket          string
	OSSDomain          string

	HistoryBackend string // "file" (default), "sqlite", "postgres"
	DatabaseURL    string

	HTTPClient    *http.Client
	BrowserClient *BrowserClient // nil = plain HTTP for watch page scrape
}

// WithDefaults fills the zero-valued fields that have a safe default.
func (c Config) WithDefaults() Config {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.TrackTimeout <= 0 {
		c.TrackTimeout = 20 * time.Second
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 24 * time.Hour
	}
	return c
}
