package article

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go_article/internal/engine"
	"github.com/anatolykoptev/go_article/internal/engine/history"
	"github.com/anatolykoptev/go_article/internal/engine/media"
	"github.com/anatolykoptev/go_article/internal/engine/storage"
	"github.com/anatolykoptev/go_article/internal/engine/transcript"
)

// Progress receives stage updates; fraction is clamped to [0,1].
type Progress func(stage, detail string, fraction float64)

// TranscriptFetcher acquires a transcript through the fallback chain.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, req transcript.Request) (*transcript.Result, error)
}

// PlanMaker turns a transcript into an article plan.
type PlanMaker interface {
	Plan(ctx context.Context, req PlanRequest) (*Plan, error)
}

// VideoDownloader downloads a video for frame grabs.
type VideoDownloader interface {
	DownloadVideo(ctx context.Context, videoURL, dir string) (*media.Download, error)
}

// Config wires a Runner.
type Config struct {
	Transcripts TranscriptFetcher
	Planner     PlanMaker
	Videos      VideoDownloader
	Frames      FrameExtractor
	Images      ImageGenerator
	Uploader    storage.Uploader // nil keeps local file:// image URLs
	History     history.Store    // nil disables run logging
	Model       string           // recorded in history and plan cache keys
	Languages   []string
	Logger      *slog.Logger
	Now         func() time.Time
}

// Options are the per-run settings.
type Options struct {
	URL           string
	Instruction   string
	TargetWords   int
	MaxImages     int // <= 0: model decides
	ImageStrategy string
	Workspace     string
	OSSPrefix     string
	OSSStyle      string
	SkipUpload    bool
}

// RunResult lists what a successful run produced.
type RunResult struct {
	VideoID            string   `json:"video_id"`
	Title              string   `json:"title"`
	TranscriptStrategy string   `json:"transcript_strategy"`
	TranscriptPath     string   `json:"transcript_path"`
	PlanPath           string   `json:"plan_path"`
	ArticlePath        string   `json:"article_path"`
	HTMLPath           string   `json:"html_path"`
	ManifestPath       string   `json:"manifest_path"`
	ImageCount         int      `json:"image_count"`
	ImageURLs          []string `json:"image_urls"`
}

// Runner executes the article pipeline. Runs on one workspace must not overlap.
type Runner struct {
	cfg Config
}

// NewRunner creates a Runner.
func NewRunner(cfg Config) *Runner {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Runner{cfg: cfg}
}

// Image progress spans 0.42..0.90.
const (
	imageProgressBase = 0.42
	imageProgressSpan = 0.48
)

// Run produces the article for opts.URL and records the outcome in history,
// whether it succeeded or not.
func (r *Runner) Run(ctx context.Context, opts Options, progress Progress) (*RunResult, error) {
	engine.IncrArticleRun()
	start := r.cfg.Now()

	res, err := r.run(ctx, opts, progress)
	r.record(ctx, opts, start, res, err)
	if err != nil {
		engine.IncrArticleFailure()
		r.cfg.Logger.Error("article run failed", slog.String("url", opts.URL), slog.Any("error", err))
		return nil, err
	}
	r.cfg.Logger.Info("article run done",
		slog.String("video_id", res.VideoID),
		slog.Int("images", res.ImageCount),
		slog.Duration("elapsed", r.cfg.Now().Sub(start)))
	return res, nil
}

func (r *Runner) run(ctx context.Context, opts Options, progress Progress) (*RunResult, error) {
	notify := func(stage, detail string, fraction float64) {
		if progress != nil {
			progress(stage, detail, math.Max(0, math.Min(1, fraction)))
		}
	}

	notify("初始化", "解析视频链接", 0.03)
	videoID, err := transcript.ExtractVideoID(opts.URL)
	if err != nil {
		return nil, err
	}
	strategy, err := ParseImageStrategy(opts.ImageStrategy)
	if err != nil {
		return nil, err
	}
	ws, err := NewWorkspace(opts.Workspace)
	if err != nil {
		return nil, err
	}
	res := &RunResult{VideoID: videoID, ImageURLs: []string{}}

	notify("提取字幕", "正在抓取 YouTube 字幕", 0.10)
	tr, err := r.transcript(ctx, videoID)
	if err != nil {
		return res, err
	}
	res.TranscriptStrategy = tr.Strategy
	text := tr.Text()
	res.TranscriptPath = ws.TranscriptPath(videoID)
	if err := os.WriteFile(res.TranscriptPath, []byte(text), 0o644); err != nil {
		return res, fmt.Errorf("write transcript: %w", err)
	}

	notify("生成文案", "调用模型生成文章与配图计划", 0.22)
	plan, err := r.plan(ctx, videoID, PlanRequest{
		Transcript:  text,
		Instruction: opts.Instruction,
		TargetWords: opts.TargetWords,
		MaxImages:   opts.MaxImages,
	})
	if err != nil {
		return res, err
	}
	res.Title = plan.Title
	res.PlanPath = ws.PlanPath(videoID)
	if err := writeJSON(res.PlanPath, plan); err != nil {
		return res, err
	}

	total := plan.ImageCount()
	var videoPath string
	var duration float64
	if total > 0 && strategy.needsVideo() {
		notify("下载视频", "正在下载并准备截帧", 0.34)
		videoPath, duration, err = r.video(ctx, opts.URL, ws.Video)
		if err != nil {
			if strategy != ImagesHybrid {
				return res, err
			}
			r.cfg.Logger.Warn("video download failed, generating all images", slog.Any("error", err))
		}
	}
	if total > 0 && (strategy == ImagesAIOnly || videoPath == "") && r.cfg.Images == nil {
		return res, ErrNoImageGenerator
	}

	uploader := r.cfg.Uploader
	if opts.SkipUpload {
		uploader = nil
	} else {
		notify("初始化图床", "加载对象存储配置", 0.40)
		if uploader == nil {
			r.cfg.Logger.Warn("uploader not configured, keeping local image paths")
		}
	}

	maker := &imageMaker{strategy: strategy, frames: r.cfg.Frames, images: r.cfg.Images, logger: r.cfg.Logger}
	now := r.cfg.Now()
	var records []ImageRecord
	handled := 0
	for i := range plan.Sections {
		section := &plan.Sections[i]
		if !section.Image.Need {
			continue
		}
		handled++
		idx := i + 1
		notify("处理配图",
			fmt.Sprintf("第 %d/%d 张：%s", handled, total, section.Heading),
			imageProgressBase+imageProgressSpan*float64(handled-1)/float64(total))

		if section.Image.Timestamp == ZeroTimestamp {
			r.cfg.Logger.Debug("image timestamp missing or unparseable, using video start",
				slog.String("heading", section.Heading))
		}
		seconds := transcript.Clamp(transcript.ParseLenient(section.Image.Timestamp), duration)
		rawPath, webPath := ws.FramePaths(videoID, idx)
		source, err := maker.make(ctx, imageJob{
			title:     plan.Title,
			section:   *section,
			videoPath: videoPath,
			seconds:   seconds,
			rawPath:   rawPath,
			webPath:   webPath,
		})
		if err != nil {
			return res, fmt.Errorf("image %d (%s): %w", idx, section.Heading, err)
		}

		imageURL, err := publish(ctx, uploader, webPath, storage.ObjectKey(opts.OSSPrefix, now, videoID, filepath.Base(webPath)))
		if err != nil {
			return res, err
		}
		imageURL = storage.ApplyStyle(imageURL, opts.OSSStyle)

		alt := firstNonEmpty(section.Image.Alt, section.Image.Caption, section.Heading)
		section.BodyMarkdown = InsertImage(section.BodyMarkdown, ImageMarkdown(alt, imageURL), section.Image.Anchor)

		records = append(records, ImageRecord{
			SectionIndex: idx,
			Heading:      section.Heading,
			Timestamp:    section.Image.Timestamp,
			Seconds:      seconds,
			Source:       source,
			LocalImage:   webPath,
			ImageURL:     imageURL,
			Caption:      section.Image.Caption,
		})
		res.ImageURLs = append(res.ImageURLs, imageURL)
	}
	res.ImageCount = len(records)

	notify("生成文件", "写入 Markdown、HTML 与 manifest", 0.94)
	if err := r.writeOutputs(ws, plan, records, res, opts, videoPath, string(strategy)); err != nil {
		return res, err
	}

	notify("完成", "全部流程执行成功", 1.0)
	return res, nil
}

// transcript returns the cached transcript for videoID or fetches it.
func (r *Runner) transcript(ctx context.Context, videoID string) (*transcript.Result, error) {
	key := engine.CacheKey("transcript", videoID, strings.Join(r.cfg.Languages, ","))
	if cached, ok := engine.CacheLoadJSON[transcript.Result](ctx, key); ok && len(cached.Segments) > 0 {
		return &cached, nil
	}
	if r.cfg.Transcripts == nil {
		return nil, errors.New("transcript fetcher not configured")
	}
	tr, err := r.cfg.Transcripts.Fetch(ctx, transcript.Request{
		VideoID:   videoID,
		SourceURL: transcript.WatchURL(videoID),
		Languages: r.cfg.Languages,
	})
	if err != nil {
		return nil, err
	}
	engine.CacheStoreJSON(ctx, key, *tr)
	return tr, nil
}

// plan returns the cached plan for the same video and settings or asks the planner.
func (r *Runner) plan(ctx context.Context, videoID string, req PlanRequest) (*Plan, error) {
	key := engine.CacheKey("plan", videoID, r.cfg.Model, req.Instruction,
		strconv.Itoa(req.TargetWords), strconv.Itoa(req.MaxImages))
	if cached, ok := engine.CacheLoadJSON[Plan](ctx, key); ok && len(cached.Sections) > 0 {
		return &cached, nil
	}
	if r.cfg.Planner == nil {
		return nil, errors.New("planner not configured")
	}
	var plan *Plan
	err := engine.TrackOperation(ctx, "article_plan", 90*time.Second, func(ctx context.Context) error {
		var err error
		plan, err = r.cfg.Planner.Plan(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	engine.CacheStoreJSON(ctx, key, *plan)
	return plan, nil
}

// video downloads the source video and returns its path and duration.
func (r *Runner) video(ctx context.Context, videoURL, dir string) (string, float64, error) {
	if r.cfg.Videos == nil {
		return "", 0, errors.New("video downloader not configured")
	}
	var dl *media.Download
	err := engine.TrackOperation(ctx, "video_download", 2*time.Minute, func(ctx context.Context) error {
		var err error
		dl, err = r.cfg.Videos.DownloadVideo(ctx, videoURL, dir)
		return err
	})
	if err != nil {
		return "", 0, fmt.Errorf("download video: %w", err)
	}
	return dl.Path, dl.Info.Duration, nil
}

func (r *Runner) writeOutputs(ws *Workspace, plan *Plan, images []ImageRecord, res *RunResult, opts Options, videoPath, strategy string) error {
	now := r.cfg.Now()
	base := ws.OutputBase(res.VideoID, now)
	res.ArticlePath = base + ".md"
	res.HTMLPath = base + ".html"
	res.ManifestPath = base + ".manifest.json"

	md := RenderMarkdown(plan)
	if err := os.WriteFile(res.ArticlePath, []byte(md), 0o644); err != nil {
		return fmt.Errorf("write article: %w", err)
	}
	page, err := RenderHTML(plan.Title, md)
	if err != nil {
		return err
	}
	if err := os.WriteFile(res.HTMLPath, []byte(page), 0o644); err != nil {
		return fmt.Errorf("write html: %w", err)
	}

	if images == nil {
		images = []ImageRecord{}
	}
	return writeJSON(res.ManifestPath, Manifest{
		SourceURL:          opts.URL,
		VideoID:            res.VideoID,
		Title:              plan.Title,
		TranscriptStrategy: res.TranscriptStrategy,
		ImageStrategy:      strategy,
		VideoPath:          videoPath,
		TranscriptPath:     res.TranscriptPath,
		PlanPath:           res.PlanPath,
		ArticlePath:        res.ArticlePath,
		HTMLPath:           res.HTMLPath,
		GeneratedAt:        now,
		Images:             images,
	})
}

// publish uploads path or, without an uploader, returns its file:// URL.
func publish(ctx context.Context, up storage.Uploader, path, key string) (string, error) {
	if up == nil {
		return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String(), nil
	}
	return up.Upload(ctx, path, key)
}

func (r *Runner) record(ctx context.Context, opts Options, start time.Time, res *RunResult, runErr error) {
	if r.cfg.History == nil {
		return
	}
	rec := history.Record{
		CreatedAt:   start,
		Status:      history.StatusSuccess,
		SourceURL:   opts.URL,
		Model:       r.cfg.Model,
		TargetWords: opts.TargetWords,
		MaxImages:   opts.MaxImages,
		ImageMode:   opts.ImageStrategy,
		SkipUpload:  opts.SkipUpload,
		OSSPrefix:   opts.OSSPrefix,
		OSSStyle:    opts.OSSStyle,
	}
	if runErr != nil {
		rec.Status = history.StatusFailed
		rec.Error = runErr.Error()
	}
	if res != nil {
		rec.VideoID = res.VideoID
		rec.Title = res.Title
		rec.TranscriptStrategy = res.TranscriptStrategy
		if runErr == nil {
			rec.ArticlePath = res.ArticlePath
			rec.HTMLPath = res.HTMLPath
			rec.ManifestPath = res.ManifestPath
			rec.ImageURLs = res.ImageURLs
		}
	}
	// Recording must not be cut short by a cancelled run.
	if err := r.cfg.History.Append(context.WithoutCancel(ctx), rec); err != nil {
		r.cfg.Logger.Warn("history append failed", slog.Any("error", err))
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
