package articleserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_article/internal/engine/history"
	"github.com/anatolykoptev/go_article/internal/toolutil"
)

const maxHistoryLimit = 500

func (s *Server) registerHistory(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "article_history",
		Description: "List recent youtube_article runs, newest first: status, error, source URL, title, output paths and image URLs.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input HistoryInput) (*mcp.CallToolResult, HistoryOutput, error) {
		out, err := s.listHistory(ctx, input)
		return nil, out, err
	})
}

func (s *Server) listHistory(ctx context.Context, input HistoryInput) (HistoryOutput, error) {
	recs, err := s.app.History.List(ctx, toolutil.ClampLimit(input.Limit, history.DefaultListLimit, maxHistoryLimit))
	if err != nil {
		return HistoryOutput{}, err
	}
	entries := make([]HistoryEntry, 0, len(recs))
	for _, r := range recs {
		entries = append(entries, newHistoryEntry(r))
	}
	return HistoryOutput{Count: len(entries), Records: entries}, nil
}
