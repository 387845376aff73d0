// Package history keeps an append-only log of article runs.
package history

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Run statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// DefaultListLimit is used when List is called with a non-positive limit.
const DefaultListLimit = 50

// Record is one article run: the options it ran with and what it produced.
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`

	SourceURL   string `json:"source_url"`
	VideoID     string `json:"video_id,omitempty"`
	Model       string `json:"model,omitempty"`
	TargetWords int    `json:"target_words,omitempty"`
	MaxImages   int    `json:"max_images,omitempty"`
	ImageMode   string `json:"image_mode,omitempty"`
	SkipUpload  bool   `json:"skip_upload"`
	OSSPrefix   string `json:"oss_prefix,omitempty"`
	OSSStyle    string `json:"oss_style,omitempty"`

	Title              string   `json:"title,omitempty"`
	TranscriptStrategy string   `json:"transcript_strategy,omitempty"`
	ArticlePath        string   `json:"article_path,omitempty"`
	HTMLPath           string   `json:"html_path,omitempty"`
	ManifestPath       string   `json:"manifest_path,omitempty"`
	ImageURLs          []string `json:"image_urls,omitempty"`
}

// Store persists run records.
type Store interface {
	Append(ctx context.Context, rec Record) error
	// List returns up to limit records, newest first.
	List(ctx context.Context, limit int) ([]Record, error)
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Open returns the store for backend. File and SQLite stores live under
// workspace/history; Postgres needs dsn.
func Open(ctx context.Context, backend, workspace, dsn string) (Store, error) {
	dir := filepath.Join(workspace, "history")
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendFile:
		return NewFileStore(filepath.Join(dir, "runs.jsonl")), nil
	case BackendSQLite:
		return OpenSQLite(filepath.Join(dir, "runs.db"))
	case BackendPostgres:
		return ConnectPostgres(ctx, dsn)
	}
	return nil, fmt.Errorf("unknown history backend %q (valid: file, sqlite, postgres)", backend)
}

// prepare fills the id and timestamp of a new record.
func prepare(rec Record) Record {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return rec
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

// newestFirst sorts records by creation time, latest first; equal times keep
// their later-appended record first.
func newestFirst(recs []Record) {
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].CreatedAt.After(recs[j].CreatedAt) })
}
