package article

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/anatolykoptev/go_article/internal/engine/media"
	"github.com/anatolykoptev/go_article/internal/engine/sources"
)

// ImageStrategy decides where section images come from.
type ImageStrategy string

// Image strategies.
const (
	ImagesVideoOnly ImageStrategy = "video_only" // frame grabs only
	ImagesHybrid    ImageStrategy = "hybrid"     // frame grab, generated image when it fails
	ImagesAIOnly    ImageStrategy = "ai_only"    // generated images only
)

// ErrNoImageGenerator is returned when a strategy needs generated images but
// no generator is configured.
var ErrNoImageGenerator = errors.New("image generator not configured")

// ParseImageStrategy maps a name to a strategy. Empty means video_only.
func ParseImageStrategy(s string) (ImageStrategy, error) {
	switch ImageStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", ImagesVideoOnly:
		return ImagesVideoOnly, nil
	case ImagesHybrid:
		return ImagesHybrid, nil
	case ImagesAIOnly:
		return ImagesAIOnly, nil
	}
	return "", fmt.Errorf("unknown image strategy %q (valid: video_only, hybrid, ai_only)", s)
}

func (s ImageStrategy) needsVideo() bool { return s != ImagesAIOnly }

// FrameExtractor grabs one still from a local video.
type FrameExtractor interface {
	ExtractFrame(ctx context.Context, videoPath string, seconds float64, out string) error
}

// ImageGenerator produces an illustration for a section.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, p sources.ImagePrompt) ([]byte, string, error)
}

// imageJob is one planned image being produced.
type imageJob struct {
	title     string
	section   Section
	videoPath string // empty when no video is available
	seconds   float64
	rawPath   string
	webPath   string
}

// imageMaker produces the web-ready file for an imageJob.
type imageMaker struct {
	strategy ImageStrategy
	frames   FrameExtractor
	images   ImageGenerator
	logger   *slog.Logger
}

// make writes job.webPath and reports which source produced it.
func (m *imageMaker) make(ctx context.Context, job imageJob) (string, error) {
	if m.strategy == ImagesAIOnly || job.videoPath == "" {
		return ImageSourceGenerated, m.generate(ctx, job)
	}

	err := m.frame(ctx, job)
	if err == nil {
		return ImageSourceFrame, nil
	}
	if m.strategy != ImagesHybrid {
		return "", err
	}
	m.logger.Warn("frame grab failed, generating image",
		slog.String("heading", job.section.Heading),
		slog.Any("error", err))
	return ImageSourceGenerated, m.generate(ctx, job)
}

func (m *imageMaker) frame(ctx context.Context, job imageJob) error {
	if m.frames == nil {
		return errors.New("frame extractor not configured")
	}
	if err := m.frames.ExtractFrame(ctx, job.videoPath, job.seconds, job.rawPath); err != nil {
		return err
	}
	return media.PrepareForWeb(job.rawPath, job.webPath, media.DefaultMaxWidth, media.DefaultMaxBytes)
}

func (m *imageMaker) generate(ctx context.Context, job imageJob) error {
	if m.images == nil {
		return ErrNoImageGenerator
	}
	data, _, err := m.images.GenerateImage(ctx, sources.ImagePrompt{
		ArticleTitle: job.title,
		Heading:      job.section.Heading,
		Caption:      job.section.Image.Caption,
		BodyMarkdown: job.section.BodyMarkdown,
	})
	if err != nil {
		return fmt.Errorf("generate image: %w", err)
	}
	// PrepareForWeb sniffs the format, so the raw extension does not matter.
	if err := os.WriteFile(job.rawPath, data, 0o644); err != nil {
		return fmt.Errorf("write generated image: %w", err)
	}
	return media.PrepareForWeb(job.rawPath, job.webPath, media.DefaultMaxWidth, media.DefaultMaxBytes)
}
