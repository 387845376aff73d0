package article

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/anatolykoptev/go_article/internal/engine"
)

// Workspace is the directory tree a run writes into.
type Workspace struct {
	Root       string
	Video      string
	Transcript string
	Plan       string
	FramesRaw  string
	FramesWeb  string
	Output     string
	History    string
}

// NewWorkspace resolves root and creates the layout under it.
func NewWorkspace(root string) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("workspace path: %w", err)
	}
	ws := &Workspace{
		Root:       abs,
		Video:      filepath.Join(abs, "video"),
		Transcript: filepath.Join(abs, "transcript"),
		Plan:       filepath.Join(abs, "plan"),
		FramesRaw:  filepath.Join(abs, "frames", "raw"),
		FramesWeb:  filepath.Join(abs, "frames", "web"),
		Output:     filepath.Join(abs, "output"),
		History:    filepath.Join(abs, "history"),
	}
	for _, dir := range []string{ws.Video, ws.Transcript, ws.Plan, ws.FramesRaw, ws.FramesWeb, ws.Output, ws.History} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return ws, nil
}

// TranscriptPath is where the timestamped transcript for videoID goes.
func (w *Workspace) TranscriptPath(videoID string) string {
	return filepath.Join(w.Transcript, fileStem(videoID)+".txt")
}

// PlanPath is where the normalized plan for videoID goes.
func (w *Workspace) PlanPath(videoID string) string {
	return filepath.Join(w.Plan, fileStem(videoID)+".json")
}

// FramePaths returns the raw capture and web-ready paths for image n (1-based).
func (w *Workspace) FramePaths(videoID string, n int) (raw, web string) {
	name := fmt.Sprintf("%s_%02d", fileStem(videoID), n)
	return filepath.Join(w.FramesRaw, name+".png"), filepath.Join(w.FramesWeb, name+".jpg")
}

// OutputBase returns the output path prefix for a run finished at t.
func (w *Workspace) OutputBase(videoID string, t time.Time) string {
	return filepath.Join(w.Output, fileStem(videoID)+"_"+t.Format("20060102_150405"))
}

func fileStem(videoID string) string {
	return engine.SanitizeFilename(videoID)
}
