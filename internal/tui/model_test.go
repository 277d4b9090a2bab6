package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splay4d/internal/config"
	"splay4d/internal/panel"
	"splay4d/internal/scene"
	"splay4d/pkg/types"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	cfg := config.New()
	cfg.Input.Path = t.TempDir()
	p := panel.New(cfg, scene.NewMemoryGraph())
	t.Cleanup(p.Close)
	return New(cfg, p)
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelInitialization(t *testing.T) {
	m := newTestModel(t)
	require.NotNil(t, m)
	assert.Equal(t, types.StageIdle, m.status.Stage)
	assert.True(t, m.videoMode, "video input is the default mode")
	assert.NotEmpty(t, m.pathInput.Value())
}

func TestModeToggle(t *testing.T) {
	m := newTestModel(t)

	model, _ := m.Update(keyMsg("v"))
	assert.False(t, model.(*Model).videoMode)

	model, _ = model.Update(keyMsg("v"))
	assert.True(t, model.(*Model).videoMode)
}

func TestPathEditing(t *testing.T) {
	m := newTestModel(t)

	model, _ := m.Update(keyMsg("e"))
	assert.True(t, model.(*Model).editing)

	// Keys type into the input while editing, not the key map
	model, _ = model.Update(keyMsg("v"))
	assert.True(t, model.(*Model).videoMode)

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, model.(*Model).editing)
}

func TestStartWithMissingPath(t *testing.T) {
	m := newTestModel(t)
	m.pathInput.SetValue("/nonexistent/frames")

	model, _ := m.Update(keyMsg("s"))
	assert.NotEmpty(t, model.(*Model).actionErr)
	assert.Equal(t, types.StageIdle, model.(*Model).panel.Status().Stage)
}

func TestScrubClampsAtBounds(t *testing.T) {
	m := newTestModel(t)
	// No sequence loaded yet, arrows must be a no-op
	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 0, model.(*Model).status.FrameIndex)
	assert.Empty(t, model.(*Model).actionErr)
}

func TestViewRendersStages(t *testing.T) {
	m := newTestModel(t)

	view := m.View()
	assert.Contains(t, view, "Splat 4D Video")
	assert.Contains(t, view, "video file")

	m.videoMode = false
	m.status = panel.Status{Stage: types.StageError, Err: "conversion failed"}
	view = m.View()
	assert.Contains(t, view, "frame directory")
	assert.Contains(t, view, "conversion failed")

	m.status = panel.Status{
		Stage:      types.StagePlaying,
		FrameIndex: 1,
		FrameCount: 4,
		Playing:    true,
	}
	view = m.View()
	assert.Contains(t, view, "Frame 2/4")
}

func TestTickRefreshesStatus(t *testing.T) {
	m := newTestModel(t)
	model, cmd := m.Update(tickMsg{})
	require.NotNil(t, cmd)
	assert.Equal(t, types.StageIdle, model.(*Model).status.Stage)
}
