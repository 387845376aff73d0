package article

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkspace(t *testing.T) {
	root := t.TempDir()
	ws, err := NewWorkspace(root)
	require.NoError(t, err)

	for _, dir := range []string{ws.Video, ws.Transcript, ws.Plan, ws.FramesRaw, ws.FramesWeb, ws.Output, ws.History} {
		assert.DirExists(t, dir)
	}
	assert.Equal(t, filepath.Join(root, "transcript", "abc.txt"), ws.TranscriptPath("abc"))
	assert.Equal(t, filepath.Join(root, "plan", "abc.json"), ws.PlanPath("abc"))

	raw, web := ws.FramePaths("abc", 3)
	assert.Equal(t, filepath.Join(root, "frames", "raw", "abc_03.png"), raw)
	assert.Equal(t, filepath.Join(root, "frames", "web", "abc_03.jpg"), web)

	assert.Equal(t, filepath.Join(root, "plan", "a_b_.json"), ws.PlanPath("a/b?"), "ids never escape the workspace")

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, filepath.Join(root, "output", "abc_20260102_030405"), ws.OutputBase("abc", at))
}
