package articleserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_article/internal/toolutil"
)

func (s *Server) registerTranscript(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_transcript",
		Description: "Fetch the transcript of a YouTube video. Tries the official captions first, then caption tracks listed by yt-dlp (json3, vtt, srv3, timedtext), then Gemini transcription. Returns timestamped text lines ([HH:MM:SS] text) and the strategy that succeeded.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input TranscriptInput) (*mcp.CallToolResult, TranscriptOutput, error) {
		out, err := s.fetchTranscript(ctx, input)
		return nil, out, err
	})
}

func (s *Server) fetchTranscript(ctx context.Context, input TranscriptInput) (TranscriptOutput, error) {
	u, err := toolutil.RequireURL(input.URL)
	if err != nil {
		return TranscriptOutput{}, err
	}
	res, err := s.app.Transcript(ctx, u, toolutil.NormLangs(input.Languages))
	if err != nil {
		return TranscriptOutput{}, err
	}
	out := TranscriptOutput{
		VideoID:      res.VideoID,
		Strategy:     res.Strategy,
		SegmentCount: len(res.Segments),
		Text:         res.Text(),
	}
	if input.Segments {
		out.Segments = res.Segments
	}
	return out, nil
}
