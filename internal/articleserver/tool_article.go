package articleserver

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_article/internal/engine/article"
	"github.com/anatolykoptev/go_article/internal/toolutil"
)

func (s *Server) registerArticle(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_article",
		Description: "Turn a YouTube video into an illustrated Chinese Markdown article. Fetches the transcript, plans the article with an LLM, grabs video frames or generates images for the planned sections, uploads them to OSS and writes Markdown, HTML and a manifest. Runs one at a time; expect several minutes.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ArticleInput) (*mcp.CallToolResult, *article.RunResult, error) {
		res, err := s.runArticle(ctx, input)
		if err != nil {
			return nil, nil, err
		}
		return nil, res, nil
	})
}

func (s *Server) runArticle(ctx context.Context, input ArticleInput) (*article.RunResult, error) {
	u, err := toolutil.RequireURL(input.URL)
	if err != nil {
		return nil, err
	}
	opts := s.options(u, input)

	s.runMu.Lock()
	defer s.runMu.Unlock()

	return s.app.Runner.Run(ctx, opts, func(stage, detail string, fraction float64) {
		slog.Info("youtube_article: progress",
			slog.String("stage", stage),
			slog.String("detail", detail),
			slog.Float64("progress", fraction))
	})
}

// options merges the call's settings over the server defaults.
func (s *Server) options(u string, in ArticleInput) article.Options {
	d := s.defaults
	opts := article.Options{
		URL:           u,
		Instruction:   firstSet(in.Prompt, d.Instruction),
		TargetWords:   in.TargetWords,
		MaxImages:     in.MaxImages,
		ImageStrategy: firstSet(in.ImageStrategy, d.ImageStrategy),
		Workspace:     s.app.Workspace,
		OSSPrefix:     firstSet(in.OSSPrefix, d.OSSPrefix),
		OSSStyle:      firstSet(in.OSSStyle, d.OSSStyle),
		SkipUpload:    in.SkipUpload,
	}
	if opts.TargetWords <= 0 {
		opts.TargetWords = d.TargetWords
	}
	if opts.MaxImages <= 0 {
		opts.MaxImages = d.MaxImages
	}
	return opts
}

func firstSet(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
