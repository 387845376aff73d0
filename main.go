// go_article turns YouTube videos into illustrated Markdown articles.
//
// Commands: run (full pipeline), transcript (transcript only), history
// (recent runs) and serve (MCP server exposing youtube_transcript,
// youtube_article and article_history over HTTP).
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-kit/llm"
	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_article/internal/app"
	"github.com/anatolykoptev/go_article/internal/engine"
	"github.com/anatolykoptev/go_article/internal/toolutil"
)

var version = "dev"

var (
	workspace string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:           "go_article",
	Short:         "Turn YouTube videos into illustrated articles",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&workspace, "workspace", env.Str("WORKSPACE", "./workspace"), "Working directory for generated files")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	rootCmd.AddCommand(newRunCmd(), newTranscriptCmd(), newHistoryCmd(), newServeCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		stop()
		os.Exit(1)
	}
}

// buildApp loads configuration and wires the pipeline. A non-empty model
// overrides LLM_MODEL.
func buildApp(ctx context.Context, model string) (*app.App, error) {
	c := initEngine(loadConfig(model))
	return app.New(ctx, c, workspace)
}

func loadConfig(model string) engine.Config {
	c := engine.Config{
		LLMAPIKey:          env.Str("LLM_API_KEY", env.Str("GEMINI_API_KEY", "")),
		LLMAPIKeyFallbacks: env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:         env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
		LLMModel:           env.Str("LLM_MODEL", "gemini-2.5-pro"),
		LLMTemperature:     env.Float("LLM_TEMPERATURE", 0.4),
		LLMMaxTokens:       env.Int("LLM_MAX_TOKENS", 32768),

		GeminiAPIKey:            env.Str("GEMINI_API_KEY", ""),
		GeminiAPIBase:           env.Str("GEMINI_API_BASE", ""),
		GeminiTranscribeModel:   env.Str("GEMINI_TRANSCRIBE_MODEL", "gemini-2.5-flash"),
		GeminiImageModel:        env.Str("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),
		GeminiTranscribeEnabled: envBool("GEMINI_TRANSCRIBE_FALLBACK", true),

		YtDlpPath:        env.Str("YTDLP_PATH", ""),
		YtDlpCookiesFile: env.Str("YTDLP_COOKIES", ""),
		FFmpegPath:       env.Str("FFMPEG_PATH", ""),

		TranscriptLangs: toolutil.NormLangs(env.Str("TRANSCRIPT_LANGS", "zh-Hans,zh-CN,zh,en")),
		FetchTimeout:    env.Duration("FETCH_TIMEOUT", 15*time.Second),
		TrackTimeout:    env.Duration("TRACK_TIMEOUT", 20*time.Second),
		TrackRPS:        env.Float("TRACK_RPS", 2),

		RedisURL:             env.Str("REDIS_URL", ""),
		CacheTTL:             env.Duration("CACHE_TTL", 24*time.Hour),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 200),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),

		OSSAccessKeyID:     env.Str("OSS_ACCESS_KEY_ID", ""),
		OSSAccessKeySecret: env.Str("OSS_ACCESS_KEY_SECRET", ""),
		OSSEndpoint:        env.Str("OSS_ENDPOINT", ""),
		OSSBucket:          env.Str("OSS_BUCKET", ""),
		OSSDomain:          env.Str("OSS_DOMAIN", ""),

		HistoryBackend: env.Str("HISTORY_BACKEND", "file"),
		DatabaseURL:    env.Str("DATABASE_URL", ""),
	}
	if model != "" {
		c.LLMModel = model
	}
	c.HTTPClient = &http.Client{
		Timeout: c.FetchTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     60 * time.Second,
		},
	}
	return c
}

func initEngine(c engine.Config) engine.Config {
	bc, err := engine.NewBrowserClient(env.Str("WEBSHARE_API_KEY", ""))
	if err != nil {
		slog.Warn("stealth client init failed, watch page uses plain HTTP", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
	}

	c.LLMClient = llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
		llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
		llm.WithMaxTokens(c.LLMMaxTokens),
		llm.WithTemperature(c.LLMTemperature),
		llm.WithHTTPClient(&http.Client{Timeout: 5 * time.Minute}),
	)

	c = c.WithDefaults()
	engine.InitCache(c.RedisURL, c.CacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
	return c
}

func envBool(key string, def bool) bool {
	v, err := strconv.ParseBool(env.Str(key, strconv.FormatBool(def)))
	if err != nil {
		return def
	}
	return v
}
