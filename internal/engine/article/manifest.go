package article

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Image sources recorded in the manifest.
const (
	ImageSourceFrame     = "frame"
	ImageSourceGenerated = "generated"
)

// ImageRecord describes one inserted image.
type ImageRecord struct {
	SectionIndex int     `json:"section_index"` // 1-based
	Heading      string  `json:"heading"`
	Timestamp    string  `json:"timestamp"`
	Seconds      float64 `json:"seconds"`
	Source       string  `json:"source"`
	LocalImage   string  `json:"local_image"`
	ImageURL     string  `json:"image_url"`
	Caption      string  `json:"caption"`
}

// Manifest ties a run's outputs together.
type Manifest struct {
	SourceURL          string        `json:"source_url"`
	VideoID            string        `json:"video_id"`
	Title              string        `json:"title"`
	TranscriptStrategy string        `json:"transcript_strategy"`
	ImageStrategy      string        `json:"image_strategy"`
	VideoPath          string        `json:"video_path,omitempty"`
	TranscriptPath     string        `json:"transcript_path"`
	PlanPath           string        `json:"plan_path"`
	ArticlePath        string        `json:"article_path"`
	HTMLPath           string        `json:"html_path"`
	GeneratedAt        time.Time     `json:"generated_at"`
	Images             []ImageRecord `json:"images"`
}

// writeJSON writes v indented, keeping non-ASCII text readable.
func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
