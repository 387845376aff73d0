// Package storage publishes article images to Aliyun OSS.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"github.com/anatolykoptev/go_article/internal/engine"
)

// ErrNotConfigured is returned by NewOSSUploader when credentials are missing.
var ErrNotConfigured = errors.New("oss not configured")

// Uploader publishes a local file under an object key and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, localPath, objectKey string) (string, error)
}

// OSSConfig holds the bucket coordinates and the public domain objects are served from.
type OSSConfig struct {
	AccessKeyID     string
	AccessKeySecret string
	Endpoint        string
	Bucket          string
	Domain          string
}

// Missing lists the names of empty required fields.
func (c OSSConfig) Missing() []string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"OSS_ACCESS_KEY_ID", c.AccessKeyID},
		{"OSS_ACCESS_KEY_SECRET", c.AccessKeySecret},
		{"OSS_ENDPOINT", c.Endpoint},
		{"OSS_BUCKET", c.Bucket},
		{"OSS_DOMAIN", c.Domain},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// objectPutter is the slice of *oss.Bucket the uploader needs.
type objectPutter interface {
	PutObjectFromFile(objectKey, filePath string, options ...oss.Option) error
}

// OSSUploader uploads files to one bucket.
type OSSUploader struct {
	bucket objectPutter
	domain string
	logger *slog.Logger
}

// NewOSSUploader connects to the configured bucket.
func NewOSSUploader(cfg OSSConfig, logger *slog.Logger) (*OSSUploader, error) {
	if missing := cfg.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrNotConfigured, strings.Join(missing, ", "))
	}
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("oss client: %w", err)
	}
	bucket, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("oss bucket %s: %w", cfg.Bucket, err)
	}
	return newUploader(bucket, cfg.Domain, logger), nil
}

func newUploader(bucket objectPutter, domain string, logger *slog.Logger) *OSSUploader {
	if logger == nil {
		logger = slog.Default()
	}
	return &OSSUploader{bucket: bucket, domain: strings.TrimRight(domain, "/"), logger: logger}
}

// Upload puts localPath at objectKey with a Content-Type guessed from the
// file extension and returns domain/objectKey.
func (u *OSSUploader) Upload(ctx context.Context, localPath, objectKey string) (string, error) {
	key := strings.TrimLeft(objectKey, "/")
	if key == "" {
		return "", errors.New("empty object key")
	}

	opts := []oss.Option{oss.WithContext(ctx)}
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(localPath))); ct != "" {
		opts = append(opts, oss.ContentType(ct))
	}

	err := engine.TrackOperation(ctx, "oss_upload", 10*time.Second, func(context.Context) error {
		return u.bucket.PutObjectFromFile(key, localPath, opts...)
	})
	if err != nil {
		return "", fmt.Errorf("oss upload %s: %w", key, err)
	}
	engine.IncrUpload()
	u.logger.Info("oss: uploaded", slog.String("key", key))
	return u.domain + "/" + key, nil
}

// ObjectKey builds prefix/YYYYMM/DD/videoID/name. An empty prefix is omitted.
func ObjectKey(prefix string, at time.Time, videoID, name string) string {
	parts := []string{at.Format("200601"), at.Format("02"), videoID, name}
	if p := strings.Trim(prefix, "/ "); p != "" {
		parts = append([]string{p}, parts...)
	}
	return path.Join(parts...)
}

// ApplyStyle appends an OSS image-processing style to url. The style may be
// given as "name", "style/name", "!name" or "x-oss-process=style/name".
func ApplyStyle(url, style string) string {
	name := strings.TrimSpace(style)
	name = strings.TrimPrefix(name, "!")
	name = strings.TrimPrefix(name, "x-oss-process=")
	name = strings.TrimPrefix(name, "style/")
	name = strings.Trim(name, "/ ")
	if name == "" {
		return url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "x-oss-process=style/" + name
}
