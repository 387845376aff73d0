// Package media wraps the external yt-dlp and ffmpeg binaries and prepares
// extracted frames for publishing.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/anatolykoptev/go_article/internal/engine/transcript"
)

const maxStderrSnippet = 500

// ErrBinaryNotFound is returned when a required binary cannot be located.
var ErrBinaryNotFound = errors.New("binary not found")

// Runner executes a command and returns its stdout.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec, folding stderr into the error.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		errOutput := stderr.String()
		if len(errOutput) > maxStderrSnippet {
			errOutput = errOutput[:maxStderrSnippet]
		}
		return nil, fmt.Errorf("%w: %s", err, errOutput)
	}
	return stdout.Bytes(), nil
}

// resolveBinary returns path if set, otherwise looks name up in PATH.
func resolveBinary(path, name string) string {
	if path != "" {
		return path
	}
	if p, err := exec.LookPath(name); err == nil {
		return p
	}
	return ""
}

// YtDlpConfig holds settings for the yt-dlp wrapper.
type YtDlpConfig struct {
	// Path to the yt-dlp binary. If empty, it is located via exec.LookPath.
	Path string
	// CookiesFile is an optional Netscape-format cookie file.
	CookiesFile string
	Logger      *slog.Logger
	Run         Runner // defaults to ExecRunner
}

// YtDlp extracts metadata and downloads media with yt-dlp.
type YtDlp struct {
	cfg YtDlpConfig
}

// NewYtDlp creates the wrapper.
func NewYtDlp(cfg YtDlpConfig) *YtDlp {
	cfg.Path = resolveBinary(cfg.Path, "yt-dlp")
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Run == nil {
		cfg.Run = ExecRunner
	}
	return &YtDlp{cfg: cfg}
}

func (y *YtDlp) run(ctx context.Context, args ...string) ([]byte, error) {
	if y.cfg.Path == "" {
		return nil, fmt.Errorf("yt-dlp: %w", ErrBinaryNotFound)
	}
	if y.cfg.CookiesFile != "" {
		args = append([]string{"--cookies", y.cfg.CookiesFile}, args...)
	}
	return y.cfg.Run(ctx, y.cfg.Path, args...)
}

// Extract returns video metadata including the caption track index,
// without downloading media.
func (y *YtDlp) Extract(ctx context.Context, videoURL string) (*transcript.VideoInfo, error) {
	out, err := y.run(ctx, "--dump-single-json", "--skip-download", "--no-warnings", videoURL)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp metadata: %w", err)
	}
	var info transcript.VideoInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, fmt.Errorf("parse yt-dlp output: %w", err)
	}
	return &info, nil
}

// Download is a downloaded media file plus the metadata yt-dlp printed for it.
type Download struct {
	Path string
	Info transcript.VideoInfo
}

// DownloadVideo downloads the best video+audio merged to mp4 into dir.
func (y *YtDlp) DownloadVideo(ctx context.Context, videoURL, dir string) (*Download, error) {
	return y.download(ctx, videoURL, dir, "-f", "bv*+ba/b", "--merge-output-format", "mp4")
}

// DownloadAudio downloads the best audio-only stream into dir.
func (y *YtDlp) DownloadAudio(ctx context.Context, videoURL, dir string) (string, error) {
	d, err := y.download(ctx, videoURL, dir, "-f", "bestaudio/best")
	if err != nil {
		return "", err
	}
	return d.Path, nil
}

func (y *YtDlp) download(ctx context.Context, videoURL, dir string, format ...string) (*Download, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}

	args := append(format,
		"--print-json",
		"--no-progress",
		"--no-warnings",
		"-o", filepath.Join(dir, "%(id)s.%(ext)s"),
		videoURL,
	)
	y.cfg.Logger.Info("running yt-dlp", slog.String("url", videoURL), slog.String("dir", dir))

	out, err := y.run(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp download: %w", err)
	}

	var info transcript.VideoInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, fmt.Errorf("parse yt-dlp output: %w", err)
	}
	if info.ID == "" {
		return nil, errors.New("yt-dlp output has no video id")
	}

	path, err := newestMatch(filepath.Join(dir, info.ID+".*"))
	if err != nil {
		return nil, err
	}
	return &Download{Path: path, Info: info}, nil
}

// newestMatch returns the most recently modified file matching pattern.
func newestMatch(pattern string) (string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", err
	}
	type candidate struct {
		path string
		mod  int64
	}
	var files []candidate
	for _, m := range matches {
		st, err := os.Stat(m)
		if err != nil || st.IsDir() {
			continue
		}
		files = append(files, candidate{m, st.ModTime().UnixNano()})
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no downloaded file matches %s", filepath.Base(pattern))
	}
	sort.SliceStable(files, func(i, j int) bool { return files[i].mod > files[j].mod })
	return files[0].path, nil
}
