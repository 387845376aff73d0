package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/anatolykoptev/go_article/internal/engine"
)

// FFmpeg grabs still frames from a video file.
type FFmpeg struct {
	path   string
	run    Runner
	logger *slog.Logger
}

// NewFFmpeg creates the wrapper. An empty path is resolved via PATH;
// a nil run uses ExecRunner.
func NewFFmpeg(path string, run Runner, logger *slog.Logger) *FFmpeg {
	if run == nil {
		run = ExecRunner
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FFmpeg{path: resolveBinary(path, "ffmpeg"), run: run, logger: logger}
}

// Available reports whether the ffmpeg binary was found.
func (f *FFmpeg) Available() bool { return f.path != "" }

// ExtractFrame writes the frame at seconds into out. Negative offsets are
// treated as zero.
func (f *FFmpeg) ExtractFrame(ctx context.Context, videoPath string, seconds float64, out string) error {
	if f.path == "" {
		return fmt.Errorf("ffmpeg: %w", ErrBinaryNotFound)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("create frame dir: %w", err)
	}

	engine.IncrFrameExtraction()
	_, err := f.run(ctx, f.path,
		"-y",
		"-loglevel", "error",
		"-ss", fmt.Sprintf("%.3f", max(0, seconds)),
		"-i", videoPath,
		"-frames:v", "1",
		out,
	)
	if err != nil {
		return fmt.Errorf("ffmpeg frame at %.3fs: %w", seconds, err)
	}
	f.logger.Debug("frame extracted", slog.String("out", out), slog.Float64("seconds", seconds))
	return nil
}
