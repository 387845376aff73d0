package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	LLMCalls                  atomic.Int64
	LLMErrors                 atomic.Int64
	YouTubeTranscriptRequests atomic.Int64
	CaptionTrackDownloads     atomic.Int64
	CaptionTrackErrors        atomic.Int64
	ModelTranscriptions       atomic.Int64
	ImageGenerations          atomic.Int64
	FrameExtractions          atomic.Int64
	Uploads                   atomic.Int64
	ArticleRuns               atomic.Int64
	ArticleFailures           atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"llm_calls":                   metrics.LLMCalls.Load(),
		"llm_errors":                  metrics.LLMErrors.Load(),
		"youtube_transcript_requests": metrics.YouTubeTranscriptRequests.Load(),
		"caption_track_downloads":     metrics.CaptionTrackDownloads.Load(),
		"caption_track_errors":        metrics.CaptionTrackErrors.Load(),
		"model_transcriptions":        metrics.ModelTranscriptions.Load(),
		"image_generations":           metrics.ImageGenerations.Load(),
		"frame_extractions":           metrics.FrameExtractions.Load(),
		"uploads":                     metrics.Uploads.Load(),
		"article_runs":                metrics.ArticleRuns.Load(),
		"article_failures":            metrics.ArticleFailures.Load(),
		"cache_hits":                  hits,
		"cache_misses":                misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"llm_calls", "llm_errors",
		"youtube_transcript_requests",
		"caption_track_downloads", "caption_track_errors",
		"model_transcriptions", "image_generations",
		"frame_extractions", "uploads",
		"article_runs", "article_failures",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sub-packages.
func IncrYouTubeTranscript()    { metrics.YouTubeTranscriptRequests.Add(1) }
func IncrCaptionTrackDownload() { metrics.CaptionTrackDownloads.Add(1) }
func IncrCaptionTrackError()    { metrics.CaptionTrackErrors.Add(1) }
func IncrModelTranscription()   { metrics.ModelTranscriptions.Add(1) }
func IncrImageGeneration()      { metrics.ImageGenerations.Add(1) }
func IncrFrameExtraction()      { metrics.FrameExtractions.Add(1) }
func IncrUpload()               { metrics.Uploads.Add(1) }
func IncrArticleRun()           { metrics.ArticleRuns.Add(1) }
func IncrArticleFailure()       { metrics.ArticleFailures.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, threshold time.Duration, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > threshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
