// Package articleserver exposes the article pipeline as MCP tools.
package articleserver

import (
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_article/internal/app"
)

// Defaults are the per-run settings used when a tool call leaves them empty.
type Defaults struct {
	Instruction   string
	TargetWords   int
	MaxImages     int
	ImageStrategy string
	OSSPrefix     string
	OSSStyle      string
}

// Server holds the state shared by the tools.
type Server struct {
	app      *app.App
	defaults Defaults
	// runMu serializes article runs; they share one workspace.
	runMu sync.Mutex
}

// New creates the tool server.
func New(a *app.App, d Defaults) *Server {
	return &Server{app: a, defaults: d}
}

// RegisterTools registers youtube_transcript, youtube_article and article_history.
func (s *Server) RegisterTools(server *mcp.Server) {
	s.registerTranscript(server)
	s.registerArticle(server)
	s.registerHistory(server)
}

// ToolCount is the number of tools RegisterTools adds.
const ToolCount = 3
