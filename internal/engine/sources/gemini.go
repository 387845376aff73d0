package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/anatolykoptev/go_article/internal/engine"
	"github.com/anatolykoptev/go_article/internal/engine/transcript"
)

// Gemini client on the genai SDK: GenerateContent for transcription and image
// generation, the Files service for uploaded audio.

const (
	geminiDefaultTranscribe  = "gemini-2.5-flash"
	geminiDefaultImageModel  = "gemini-2.5-flash-image"
	geminiFilePollInterval   = 2 * time.Second
	geminiFilePollAttempts   = 60
	geminiImageSnippetLength = 600
)

var (
	// ErrGeminiNotConfigured is returned when no API key is set or the
	// transcription fallback is disabled.
	ErrGeminiNotConfigured = errors.New("gemini not configured")
	// ErrNoImageData is returned when the image model answers without image bytes.
	ErrNoImageData = errors.New("gemini returned no image data")
)

// AudioDownloader fetches the audio track of a video into dir.
type AudioDownloader interface {
	DownloadAudio(ctx context.Context, videoURL, dir string) (string, error)
}

// GeminiConfig configures a GeminiClient.
type GeminiConfig struct {
	APIKey            string
	BaseURL           string // empty = SDK default endpoint
	TranscribeModel   string
	ImageModel        string
	TranscribeEnabled bool
	HTTPClient        *http.Client
	Audio             AudioDownloader // nil disables the uploaded-audio attempt
	Logger            *slog.Logger
}

// geminiModels is the slice of *genai.Models the client calls.
type geminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// geminiFiles is the slice of *genai.Files the client calls.
type geminiFiles interface {
	UploadFromPath(ctx context.Context, path string, config *genai.UploadFileConfig) (*genai.File, error)
	Get(ctx context.Context, name string, config *genai.GetFileConfig) (*genai.File, error)
	Delete(ctx context.Context, name string, config *genai.DeleteFileConfig) (*genai.DeleteFileResponse, error)
}

// GeminiClient transcribes videos and generates section illustrations.
type GeminiClient struct {
	cfg          GeminiConfig
	models       geminiModels
	files        geminiFiles
	initErr      error
	pollInterval time.Duration
}

// NewGeminiClient creates a client, filling defaults for empty fields. An
// empty API key leaves the client unconfigured; every call then returns
// ErrGeminiNotConfigured.
func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	if cfg.TranscribeModel == "" {
		cfg.TranscribeModel = geminiDefaultTranscribe
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = geminiDefaultImageModel
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Minute}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	c := &GeminiClient{cfg: cfg, pollInterval: geminiFilePollInterval}
	if cfg.APIKey == "" {
		return c
	}

	gc, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  cfg.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		c.initErr = fmt.Errorf("gemini client: %w", err)
		cfg.Logger.Warn("gemini: client init failed", slog.Any("error", err))
		return c
	}
	c.models, c.files = gc.Models, gc.Files
	return c
}

func (c *GeminiClient) ready() error {
	if c.initErr != nil {
		return c.initErr
	}
	if c.models == nil {
		return ErrGeminiNotConfigured
	}
	return nil
}

func (c *GeminiClient) generate(ctx context.Context, model string, parts []*genai.Part, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := engine.RetryDo(ctx, engine.DefaultRetryConfig, func() (*genai.GenerateContentResponse, error) {
		return c.models.GenerateContent(ctx, model, contents, config)
	})
	if err != nil {
		return nil, fmt.Errorf("gemini generateContent: %w", err)
	}
	return resp, nil
}

// responseText joins every text part of every candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if p != nil {
				sb.WriteString(p.Text)
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

// responseImage returns the first inline image part.
func responseImage(resp *genai.GenerateContentResponse) ([]byte, string, error) {
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if p == nil || p.InlineData == nil || !strings.HasPrefix(p.InlineData.MIMEType, "image/") {
				continue
			}
			if len(p.InlineData.Data) > 0 {
				return p.InlineData.Data, p.InlineData.MIMEType, nil
			}
		}
	}
	return nil, "", ErrNoImageData
}

const transcribePrompt = `请把音频内容转成结构化 JSON，并严格输出为 JSON。

输出格式：
{
  "segments": [
    {
      "timestamp": "HH:MM:SS",
      "text": "该时间点对应的转写文本"
    }
  ]
}

要求：
1. 按时间顺序输出。
2. 每段保持简洁、语义完整。
3. timestamp 必须可解析（HH:MM:SS 或 MM:SS）。
4. 不要输出任何 JSON 之外的说明文字。`

// Transcribe asks the model for a timestamped JSON transcript of the video.
// The video URL is tried first; if that yields nothing usable the audio is
// downloaded and uploaded through the Files service.
func (c *GeminiClient) Transcribe(ctx context.Context, videoURL string) (string, error) {
	if !c.cfg.TranscribeEnabled {
		return "", ErrGeminiNotConfigured
	}
	if err := c.ready(); err != nil {
		return "", err
	}
	engine.IncrModelTranscription()

	text, uriErr := c.transcribeByURI(ctx, videoURL)
	if uriErr == nil && len(transcript.AdaptModelResponse(text)) > 0 {
		return text, nil
	}
	if uriErr != nil {
		c.cfg.Logger.Warn("gemini: transcription by url failed", slog.String("url", videoURL), slog.Any("error", uriErr))
	}
	if c.cfg.Audio == nil {
		if uriErr != nil {
			return "", uriErr
		}
		return text, nil
	}

	audioText, err := c.transcribeByAudio(ctx, videoURL)
	if err != nil {
		return "", fmt.Errorf("audio upload transcription: %w", err)
	}
	return audioText, nil
}

var jsonResponse = &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}

func (c *GeminiClient) transcribeByURI(ctx context.Context, videoURL string) (string, error) {
	resp, err := c.generate(ctx, c.cfg.TranscribeModel, []*genai.Part{
		genai.NewPartFromURI(videoURL, ""),
		genai.NewPartFromText(transcribePrompt),
	}, jsonResponse)
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

func (c *GeminiClient) transcribeByAudio(ctx context.Context, videoURL string) (string, error) {
	dir, err := os.MkdirTemp("", "yt_audio_")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	audioPath, err := c.cfg.Audio.DownloadAudio(ctx, videoURL, dir)
	if err != nil {
		return "", fmt.Errorf("download audio: %w", err)
	}

	file, err := c.uploadFile(ctx, audioPath)
	if err != nil {
		return "", err
	}
	defer c.deleteFile(file.Name)

	file, err = c.waitActive(ctx, file)
	if err != nil {
		return "", err
	}

	resp, err := c.generate(ctx, c.cfg.TranscribeModel, []*genai.Part{
		genai.NewPartFromText(transcribePrompt),
		genai.NewPartFromURI(file.URI, file.MIMEType),
	}, jsonResponse)
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

var audioMimeTypes = map[string]string{
	".m4a":  "audio/mp4",
	".mp4":  "audio/mp4",
	".webm": "audio/webm",
	".opus": "audio/ogg",
	".ogg":  "audio/ogg",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
}

func (c *GeminiClient) uploadFile(ctx context.Context, path string) (*genai.File, error) {
	mimeType := audioMimeTypes[strings.ToLower(filepath.Ext(path))]
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	file, err := c.files.UploadFromPath(ctx, path, &genai.UploadFileConfig{
		MIMEType:    mimeType,
		DisplayName: filepath.Base(path),
	})
	if err != nil {
		return nil, fmt.Errorf("upload audio: %w", err)
	}
	if file == nil || file.Name == "" {
		return nil, errors.New("upload response missing file name")
	}
	if file.MIMEType == "" {
		file.MIMEType = mimeType
	}
	return file, nil
}

// waitActive polls an uploaded file until the service finishes processing
// it. Only an ACTIVE file with a URI is returned.
func (c *GeminiClient) waitActive(ctx context.Context, file *genai.File) (*genai.File, error) {
	for i := 0; i < geminiFilePollAttempts; i++ {
		switch file.State {
		case genai.FileStateActive:
			if file.URI == "" {
				return nil, fmt.Errorf("uploaded file %s has no uri", file.Name)
			}
			return file, nil
		case genai.FileStateFailed:
			return nil, fmt.Errorf("uploaded file %s failed processing", file.Name)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}

		next, err := c.files.Get(ctx, file.Name, nil)
		if err != nil {
			return nil, fmt.Errorf("poll file %s: %w", file.Name, err)
		}
		if next == nil {
			return nil, fmt.Errorf("poll file %s: empty response", file.Name)
		}
		if next.MIMEType == "" {
			next.MIMEType = file.MIMEType
		}
		file = next
	}
	return nil, fmt.Errorf("uploaded file %s still processing", file.Name)
}

// deleteFile removes an uploaded file. Failures are logged only.
func (c *GeminiClient) deleteFile(name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if _, err := c.files.Delete(ctx, name, nil); err != nil {
		c.cfg.Logger.Debug("gemini: delete file failed", slog.String("name", name), slog.Any("error", err))
	}
}

// ImagePrompt describes the section an illustration is generated for.
type ImagePrompt struct {
	ArticleTitle string
	Heading      string
	Caption      string
	BodyMarkdown string
}

func buildImagePrompt(p ImagePrompt) string {
	title := p.ArticleTitle
	if title == "" {
		title = "未命名文章"
	}
	caption := p.Caption
	if caption == "" {
		caption = p.Heading
	}
	snippet := engine.TruncateRunes(engine.CollapseSpaces(p.BodyMarkdown), geminiImageSnippetLength, "")

	return fmt.Sprintf(`你是专业编辑插画师，请为中文长文生成一张高质量配图。

文章标题：%s
章节标题：%s
图片说明：%s

章节摘要：
%s

要求：
1. 16:9 横图，适合公众号和 WordPress。
2. 风格写实偏信息可视化，简洁、现代，不要廉价卡通感。
3. 不要任何文字、Logo、水印。
4. 画面主体清晰，突出本章节核心概念。
5. 避免畸形人脸和奇怪手部细节。`, title, p.Heading, caption, snippet)
}

// GenerateImage asks the image model for a 16:9 illustration and returns the
// image bytes with their MIME type.
func (c *GeminiClient) GenerateImage(ctx context.Context, p ImagePrompt) ([]byte, string, error) {
	if err := c.ready(); err != nil {
		return nil, "", err
	}
	engine.IncrImageGeneration()

	resp, err := c.generate(ctx, c.cfg.ImageModel,
		[]*genai.Part{genai.NewPartFromText(buildImagePrompt(p))},
		&genai.GenerateContentConfig{
			ResponseModalities: []string{"IMAGE"},
			ImageConfig:        &genai.ImageConfig{AspectRatio: "16:9"},
		})
	if err != nil {
		return nil, "", err
	}
	return responseImage(resp)
}
