package articleserver

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_article/internal/app"
	"github.com/anatolykoptev/go_article/internal/engine/article"
	"github.com/anatolykoptev/go_article/internal/engine/history"
	"github.com/anatolykoptev/go_article/internal/engine/transcript"
	"github.com/anatolykoptev/go_article/internal/toolutil"
)

type stubPlanner struct{}

func (stubPlanner) Plan(_ context.Context, _ article.PlanRequest) (*article.Plan, error) {
	return &article.Plan{
		Title:    "标题",
		Sections: []article.Section{{Heading: "一", BodyMarkdown: "正文"}},
	}, nil
}

func newTestServer(t *testing.T, segs []transcript.Segment, fetchErr error) (*Server, *history.FileStore, *[]transcript.Request) {
	t.Helper()
	dir := t.TempDir()
	var reqs []transcript.Request
	fetcher := transcript.NewFetcherWithStrategies(nil, transcript.Strategy{
		Name: "stub",
		Run: func(_ context.Context, req transcript.Request) ([]transcript.Segment, error) {
			reqs = append(reqs, req)
			return segs, fetchErr
		},
	})
	store := history.NewFileStore(filepath.Join(dir, "history", "runs.jsonl"))
	a := &app.App{
		Transcripts: fetcher,
		Runner: article.NewRunner(article.Config{
			Transcripts: fetcher,
			Planner:     stubPlanner{},
			History:     store,
			Languages:   []string{"en"},
		}),
		History:   store,
		Languages: []string{"en"},
		Workspace: dir,
	}
	return New(a, Defaults{ImageStrategy: "video_only", TargetWords: 3500, OSSPrefix: "wechat_article"}), store, &reqs
}

func TestRegisterTools(t *testing.T) {
	s, _, _ := newTestServer(t, nil, nil)
	server := mcp.NewServer(&mcp.Implementation{Name: "go_article_test", Version: "test"}, nil)
	assert.NotPanics(t, func() { s.RegisterTools(server) })
}

func TestFetchTranscript(t *testing.T) {
	segs := []transcript.Segment{{Start: 1, Duration: 2, Text: "hello"}, {Start: 3, Text: "world"}}
	s, _, reqs := newTestServer(t, segs, nil)

	out, err := s.fetchTranscript(context.Background(), TranscriptInput{URL: "https://youtu.be/dQw4w9WgXcQ", Languages: "ja, en"})
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", out.VideoID)
	assert.Equal(t, "stub", out.Strategy)
	assert.Equal(t, 2, out.SegmentCount)
	assert.Equal(t, "[00:00:01] hello\n[00:00:03] world", out.Text)
	assert.Nil(t, out.Segments)
	require.Len(t, *reqs, 1)
	assert.Equal(t, []string{"ja", "en"}, (*reqs)[0].Languages)

	out, err = s.fetchTranscript(context.Background(), TranscriptInput{URL: "dQw4w9WgXcQ", Segments: true})
	require.NoError(t, err)
	assert.Len(t, out.Segments, 2)
	assert.Equal(t, []string{"en"}, (*reqs)[1].Languages, "server languages by default")
}

func TestFetchTranscriptErrors(t *testing.T) {
	s, _, _ := newTestServer(t, nil, errors.New("blocked"))

	_, err := s.fetchTranscript(context.Background(), TranscriptInput{})
	assert.ErrorIs(t, err, toolutil.ErrURLRequired)

	_, err = s.fetchTranscript(context.Background(), TranscriptInput{URL: "https://example.com/x"})
	assert.ErrorIs(t, err, transcript.ErrInvalidVideoURL)

	_, err = s.fetchTranscript(context.Background(), TranscriptInput{URL: "dQw4w9WgXcQ"})
	assert.ErrorIs(t, err, transcript.ErrTranscriptUnavailable)
}

func TestRunArticleAndHistory(t *testing.T) {
	s, _, _ := newTestServer(t, []transcript.Segment{{Start: 0, Text: "hi"}}, nil)

	res, err := s.runArticle(context.Background(), ArticleInput{URL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"})
	require.NoError(t, err)
	assert.Equal(t, "标题", res.Title)
	assert.Zero(t, res.ImageCount)
	assert.FileExists(t, res.ArticlePath)

	_, err = s.runArticle(context.Background(), ArticleInput{URL: "https://example.com"})
	require.Error(t, err)

	out, err := s.listHistory(context.Background(), HistoryInput{})
	require.NoError(t, err)
	require.Equal(t, 2, out.Count)
	assert.Equal(t, history.StatusFailed, out.Records[0].Status, "newest first")
	assert.Equal(t, history.StatusSuccess, out.Records[1].Status)

	out, err = s.listHistory(context.Background(), HistoryInput{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Count)
}

func TestOptionsMergeDefaults(t *testing.T) {
	s, _, _ := newTestServer(t, nil, nil)
	s.defaults = Defaults{Instruction: "默认", TargetWords: 3500, MaxImages: 4, ImageStrategy: "hybrid", OSSPrefix: "p", OSSStyle: "st"}

	opts := s.options("u", ArticleInput{Prompt: "自定义", MaxImages: 2})
	assert.Equal(t, "自定义", opts.Instruction)
	assert.Equal(t, 3500, opts.TargetWords)
	assert.Equal(t, 2, opts.MaxImages)
	assert.Equal(t, "hybrid", opts.ImageStrategy)
	assert.Equal(t, "p", opts.OSSPrefix)
	assert.Equal(t, "st", opts.OSSStyle)
	assert.Equal(t, s.app.Workspace, opts.Workspace)
}
