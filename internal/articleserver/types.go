package articleserver

import (
	"time"

	"github.com/anatolykoptev/go_article/internal/engine/history"
	"github.com/anatolykoptev/go_article/internal/engine/transcript"
)

// TranscriptInput is the input of youtube_transcript.
type TranscriptInput struct {
	URL       string `json:"url" jsonschema:"YouTube video URL or 11-character video id"`
	Languages string `json:"languages,omitempty" jsonschema:"Comma-separated language preference (default: zh-Hans, zh-CN, zh, en)"`
	Segments  bool   `json:"segments,omitempty" jsonschema:"Also return the raw timed segments"`
}

// TranscriptOutput is the result of youtube_transcript.
type TranscriptOutput struct {
	VideoID      string               `json:"video_id"`
	Strategy     string               `json:"strategy"`
	SegmentCount int                  `json:"segment_count"`
	Text         string               `json:"text"`
	Segments     []transcript.Segment `json:"segments,omitempty"`
}

// ArticleInput is the input of youtube_article.
type ArticleInput struct {
	URL           string `json:"url" jsonschema:"YouTube video URL"`
	Prompt        string `json:"prompt,omitempty" jsonschema:"Writing instruction for the article"`
	TargetWords   int    `json:"target_words,omitempty" jsonschema:"Target article length in characters (default 3500)"`
	MaxImages     int    `json:"max_images,omitempty" jsonschema:"Maximum number of images; 0 lets the model decide"`
	ImageStrategy string `json:"image_strategy,omitempty" jsonschema:"video_only (default), hybrid or ai_only"`
	SkipUpload    bool   `json:"skip_upload,omitempty" jsonschema:"Keep local file URLs instead of uploading images"`
	OSSPrefix     string `json:"oss_prefix,omitempty" jsonschema:"Object key prefix for uploaded images"`
	OSSStyle      string `json:"oss_style,omitempty" jsonschema:"OSS image-processing style appended to image URLs"`
}

// HistoryInput is the input of article_history.
type HistoryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max records to return (default 50, max 500)"`
}

// HistoryEntry is one run as reported by article_history.
type HistoryEntry struct {
	ID                 string   `json:"id"`
	CreatedAt          string   `json:"created_at"` // RFC 3339
	Status             string   `json:"status"`
	Error              string   `json:"error,omitempty"`
	SourceURL          string   `json:"source_url"`
	VideoID            string   `json:"video_id,omitempty"`
	Title              string   `json:"title,omitempty"`
	ImageMode          string   `json:"image_mode,omitempty"`
	TranscriptStrategy string   `json:"transcript_strategy,omitempty"`
	ArticlePath        string   `json:"article_path,omitempty"`
	HTMLPath           string   `json:"html_path,omitempty"`
	ManifestPath       string   `json:"manifest_path,omitempty"`
	ImageURLs          []string `json:"image_urls,omitempty"`
}

func newHistoryEntry(r history.Record) HistoryEntry {
	return HistoryEntry{
		ID:                 r.ID,
		CreatedAt:          r.CreatedAt.Format(time.RFC3339),
		Status:             r.Status,
		Error:              r.Error,
		SourceURL:          r.SourceURL,
		VideoID:            r.VideoID,
		Title:              r.Title,
		ImageMode:          r.ImageMode,
		TranscriptStrategy: r.TranscriptStrategy,
		ArticlePath:        r.ArticlePath,
		HTMLPath:           r.HTMLPath,
		ManifestPath:       r.ManifestPath,
		ImageURLs:          r.ImageURLs,
	}
}

// HistoryOutput is the result of article_history.
type HistoryOutput struct {
	Count   int            `json:"count"`
	Records []HistoryEntry `json:"records"`
}
