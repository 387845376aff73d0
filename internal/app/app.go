// Package app wires engine components into a ready-to-run article pipeline.
package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/anatolykoptev/go_article/internal/engine"
	"github.com/anatolykoptev/go_article/internal/engine/article"
	"github.com/anatolykoptev/go_article/internal/engine/history"
	"github.com/anatolykoptev/go_article/internal/engine/media"
	"github.com/anatolykoptev/go_article/internal/engine/sources"
	"github.com/anatolykoptev/go_article/internal/engine/storage"
	"github.com/anatolykoptev/go_article/internal/engine/transcript"
)

// App holds the collaborators shared by the CLI and the MCP server.
type App struct {
	Transcripts *transcript.Fetcher
	Runner      *article.Runner
	History     history.Store
	Languages   []string
	Workspace   string
}

// New builds an App from c. History lives under workspace unless the
// backend is postgres.
func New(ctx context.Context, c engine.Config, workspace string) (*App, error) {
	logger := slog.Default()

	ytdlp := media.NewYtDlp(media.YtDlpConfig{
		Path:        c.YtDlpPath,
		CookiesFile: c.YtDlpCookiesFile,
		Logger:      logger,
	})
	gemini := sources.NewGeminiClient(sources.GeminiConfig{
		APIKey:            c.GeminiAPIKey,
		BaseURL:           c.GeminiAPIBase,
		TranscribeModel:   c.GeminiTranscribeModel,
		ImageModel:        c.GeminiImageModel,
		TranscribeEnabled: c.GeminiTranscribeEnabled,
		Audio:             ytdlp,
		Logger:            logger,
	})

	fetcher := transcript.NewFetcher(transcript.FetcherConfig{
		Primary:     sources.NewYouTubeClient(c.HTTPClient, c.BrowserClient, logger),
		Metadata:    ytdlp,
		Downloader:  sources.NewTrackDownloader(c.HTTPClient, c.TrackTimeout, c.TrackRPS, logger),
		Transcriber: gemini,
		Logger:      logger,
	})

	store, err := history.Open(ctx, c.HistoryBackend, workspace, c.DatabaseURL)
	if err != nil {
		return nil, err
	}

	langs := c.TranscriptLangs
	if len(langs) == 0 {
		langs = transcript.DefaultLanguages
	}

	rc := article.Config{
		Transcripts: fetcher,
		Planner:     article.NewPlanner(engine.LLMCompleter{Client: c.LLMClient, Temperature: planTemperature}, logger),
		Videos:      ytdlp,
		Frames:      media.NewFFmpeg(c.FFmpegPath, nil, logger),
		History:     store,
		Model:       c.LLMModel,
		Languages:   langs,
		Logger:      logger,
	}
	if c.GeminiAPIKey != "" {
		rc.Images = gemini
	}

	up, err := storage.NewOSSUploader(storage.OSSConfig{
		AccessKeyID:     c.OSSAccessKeyID,
		AccessKeySecret: c.OSSAccessKeySecret,
		Endpoint:        c.OSSEndpoint,
		Bucket:          c.OSSBucket,
		Domain:          c.OSSDomain,
	}, logger)
	switch {
	case err == nil:
		rc.Uploader = up
	case errors.Is(err, storage.ErrNotConfigured):
		logger.Debug("oss disabled", slog.Any("error", err))
	default:
		logger.Warn("oss init failed, images stay local", slog.Any("error", err))
	}

	return &App{
		Transcripts: fetcher,
		Runner:      article.NewRunner(rc),
		History:     store,
		Languages:   langs,
		Workspace:   workspace,
	}, nil
}

// planTemperature matches the sampling the planning prompt was tuned with.
const planTemperature = 0.4

// Transcript fetches the transcript for a video URL or id.
func (a *App) Transcript(ctx context.Context, videoURL string, langs []string) (*transcript.Result, error) {
	id, err := transcript.ExtractVideoID(videoURL)
	if err != nil {
		// Bare ids are accepted too.
		if !looksLikeID(videoURL) {
			return nil, err
		}
		id = videoURL
	}
	if len(langs) == 0 {
		langs = a.Languages
	}
	return a.Transcripts.Fetch(ctx, transcript.Request{
		VideoID:   id,
		SourceURL: transcript.WatchURL(id),
		Languages: langs,
	})
}

// Close releases the history store.
func (a *App) Close() error {
	return a.History.Close()
}

func looksLikeID(s string) bool {
	if len(s) != 11 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
