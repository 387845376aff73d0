package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBucket struct {
	key, path string
	nopts     int
	err       error
}

func (f *fakeBucket) PutObjectFromFile(key, path string, opts ...oss.Option) error {
	f.key, f.path, f.nopts = key, path, len(opts)
	return f.err
}

func TestOSSUploaderUpload(t *testing.T) {
	b := &fakeBucket{}
	u := newUploader(b, "https://cdn.example.com/", nil)

	got, err := u.Upload(context.Background(), "/tmp/abc_01.jpg", "/articles/202610/15/abc/abc_01.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/articles/202610/15/abc/abc_01.jpg", got)
	assert.Equal(t, "articles/202610/15/abc/abc_01.jpg", b.key)
	assert.Equal(t, "/tmp/abc_01.jpg", b.path)
	assert.Equal(t, 2, b.nopts, "context and content type")
}

func TestOSSUploaderErrors(t *testing.T) {
	u := newUploader(&fakeBucket{err: errors.New("denied")}, "https://cdn", nil)
	_, err := u.Upload(context.Background(), "/tmp/a.jpg", "k.jpg")
	assert.ErrorContains(t, err, "denied")

	_, err = u.Upload(context.Background(), "/tmp/a.jpg", "/")
	assert.Error(t, err)
}

func TestNewOSSUploaderMissingConfig(t *testing.T) {
	_, err := NewOSSUploader(OSSConfig{AccessKeyID: "id", Endpoint: "e"}, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorContains(t, err, "OSS_BUCKET")
}

func TestObjectKey(t *testing.T) {
	at := time.Date(2026, 10, 5, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "articles/202610/05/abc/abc_01.jpg", ObjectKey("/articles/", at, "abc", "abc_01.jpg"))
	assert.Equal(t, "202610/05/abc/x.jpg", ObjectKey("", at, "abc", "x.jpg"))
}

func TestApplyStyle(t *testing.T) {
	tests := []struct {
		name, url, style, want string
	}{
		{"empty style", "https://c/a.jpg", "", "https://c/a.jpg"},
		{"plain name", "https://c/a.jpg", "wide", "https://c/a.jpg?x-oss-process=style/wide"},
		{"bang prefix", "https://c/a.jpg", "!wide", "https://c/a.jpg?x-oss-process=style/wide"},
		{"full form", "https://c/a.jpg", "x-oss-process=style/wide", "https://c/a.jpg?x-oss-process=style/wide"},
		{"style prefix", "https://c/a.jpg", "style/wide", "https://c/a.jpg?x-oss-process=style/wide"},
		{"existing query", "https://c/a.jpg?v=1", "wide", "https://c/a.jpg?v=1&x-oss-process=style/wide"},
		{"only prefix", "https://c/a.jpg", "style/", "https://c/a.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ApplyStyle(tt.url, tt.style))
		})
	}
}
