package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeCases(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()
	sqlite, err := OpenSQLite(filepath.Join(dir, "history", "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })
	return map[string]Store{
		"file":   NewFileStore(filepath.Join(dir, "history", "runs.jsonl")),
		"sqlite": sqlite,
	}
}

func TestStoreAppendAndList(t *testing.T) {
	base := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	for name, store := range storeCases(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			list, err := store.List(ctx, 10)
			require.NoError(t, err)
			assert.Empty(t, list)

			for i, url := range []string{"https://youtu.be/a", "https://youtu.be/b", "https://youtu.be/c"} {
				require.NoError(t, store.Append(ctx, Record{
					CreatedAt: base.Add(time.Duration(i) * time.Hour),
					Status:    StatusSuccess,
					SourceURL: url,
					ImageURLs: []string{"https://cdn/x.jpg"},
				}))
			}
			require.NoError(t, store.Append(ctx, Record{
				CreatedAt: base.Add(90 * time.Minute),
				Status:    StatusFailed,
				SourceURL: "https://youtu.be/failed",
				Error:     "transcript unavailable",
			}))

			list, err = store.List(ctx, 10)
			require.NoError(t, err)
			require.Len(t, list, 4)
			assert.Equal(t, "https://youtu.be/c", list[0].SourceURL)
			assert.Equal(t, "https://youtu.be/failed", list[1].SourceURL)
			assert.Equal(t, StatusFailed, list[1].Status)
			assert.Equal(t, "transcript unavailable", list[1].Error)
			assert.Equal(t, "https://youtu.be/a", list[3].SourceURL)
			assert.NotEmpty(t, list[0].ID)
			assert.Equal(t, []string{"https://cdn/x.jpg"}, list[0].ImageURLs)

			limited, err := store.List(ctx, 2)
			require.NoError(t, err)
			assert.Len(t, limited, 2)
			assert.Equal(t, "https://youtu.be/c", limited[0].SourceURL)
		})
	}
}

func TestStoreDefaultsIDAndTime(t *testing.T) {
	for name, store := range storeCases(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Append(ctx, Record{Status: StatusSuccess, SourceURL: "u"}))
			list, err := store.List(ctx, 0)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.NotEmpty(t, list[0].ID)
			assert.False(t, list[0].CreatedAt.IsZero())
		})
	}
}

func TestFileStoreSkipsCorruptLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")
	content := `{"id":"1","created_at":"2026-10-01T08:00:00Z","status":"success","source_url":"old"}
not json at all

{"id":"2","created_at":"2026-10-02T08:00:00Z","status":"success","source_url":"new"}
{"id":"3","created_at":
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	list, err := NewFileStore(path).List(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].SourceURL)
	assert.Equal(t, "old", list[1].SourceURL)
}

func TestFileStoreKeepsUnicode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")
	store := NewFileStore(path)
	require.NoError(t, store.Append(context.Background(), Record{Title: "视频 <总结>", Status: StatusSuccess}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "视频 <总结>")
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(ctx, "", dir, "")
	require.NoError(t, err)
	fs, ok := s.(*FileStore)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "history", "runs.jsonl"), fs.Path())

	s, err = Open(ctx, "SQLite", dir, "")
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, "postgres", dir, "")
	assert.Error(t, err)

	_, err = Open(ctx, "mongo", dir, "")
	assert.ErrorContains(t, err, "unknown history backend")
}
