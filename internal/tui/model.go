// Package tui renders the sequence panel in the terminal: input
// configuration, conversion progress, and playback controls, redrawn on
// a fixed tick that also drives the playback advance rule.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"splay4d/internal/config"
	"splay4d/internal/panel"
	"splay4d/pkg/types"
)

// redrawInterval drives both rendering and the playback tick
const redrawInterval = time.Second / 30

type tickMsg time.Time

// Model is the bubbletea model for the sequence panel
type Model struct {
	cfg   *config.Config
	panel *panel.Panel

	pathInput textinput.Model
	progress  progress.Model

	videoMode bool
	editing   bool
	status    panel.Status
	actionErr string
	width     int
}

// New creates the panel TUI around an orchestrator
func New(cfg *config.Config, p *panel.Panel) *Model {
	input := textinput.New()
	input.Placeholder = "path to video or frame directory"
	input.SetValue(cfg.Input.Path)
	input.CharLimit = 512

	return &Model{
		cfg:       cfg,
		panel:     p,
		pathInput: input,
		progress:  progress.New(progress.WithDefaultGradient()),
		videoMode: cfg.Input.VideoMode,
		status:    p.Status(),
	}
}

func tick() tea.Cmd {
	return tea.Tick(redrawInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tick())
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		// One redraw tick: advance playback, then refresh the snapshot
		m.panel.Tick()
		m.status = m.panel.Status()
		return m, tick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = msg.Width - 8

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.editing = false
		m.pathInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.panel.Close()
		return m, tea.Quit

	case "e":
		if m.status.Stage != types.StageProcessing {
			m.editing = true
			m.pathInput.Focus()
		}

	case "v":
		if m.status.Stage != types.StageProcessing {
			m.videoMode = !m.videoMode
		}

	case "enter", "s":
		m.actionErr = ""
		if err := m.panel.StartConversion(m.pathInput.Value(), m.videoMode); err != nil {
			m.actionErr = err.Error()
		}

	case " ":
		m.panel.TogglePlay()

	case "r":
		if !m.status.Playing && m.status.FrameCount > 0 {
			m.scrubTo(0)
		}

	case "left", "h":
		if !m.status.Playing && m.status.FrameCount > 0 {
			m.scrubTo(m.status.FrameIndex - 1)
		}

	case "right", "l":
		if !m.status.Playing && m.status.FrameCount > 0 {
			m.scrubTo(m.status.FrameIndex + 1)
		}

	case "+", "=":
		m.panel.SetRate(m.status.FrameRate + 1)

	case "-":
		if m.status.FrameRate > 1 {
			m.panel.SetRate(m.status.FrameRate - 1)
		}
	}
	return m, nil
}

// scrubTo clamps and applies a manual frame jump
func (m *Model) scrubTo(i int) {
	if i < 0 {
		i = 0
	}
	if i >= m.status.FrameCount {
		i = m.status.FrameCount - 1
	}
	if err := m.panel.SetFrameIndex(i); err != nil {
		m.actionErr = err.Error()
	}
	m.status = m.panel.Status()
}

// View implements tea.Model
func (m *Model) View() string {
	s := titleStyle.Render("Splat 4D Video") + "\n"
	s += labelStyle.Render("Generate/play a 4D splat sequence") + "\n\n"

	mode := "frame directory"
	if m.videoMode {
		mode = "video file"
	}
	s += labelStyle.Render("Input mode: ") + valueStyle.Render(mode) + "\n"
	s += labelStyle.Render("Path:       ") + m.pathInput.View() + "\n"
	s += labelStyle.Render("Rate:       ") + valueStyle.Render(fmt.Sprintf("%.1f fps", m.status.FrameRate)) + "\n\n"

	switch m.status.Stage {
	case types.StageProcessing:
		s += statusStyle.Render("Status: "+m.status.StatusText) + "\n"
		s += m.progress.ViewAs(m.status.Progress/100) + "\n"
		if m.status.FramesReady > 0 {
			s += labelStyle.Render(fmt.Sprintf("%d frames written so far", m.status.FramesReady)) + "\n"
		}

	case types.StagePlaying:
		state := "paused"
		if m.status.Playing {
			state = "playing"
		}
		s += valueStyle.Render(fmt.Sprintf("Frame %d/%d (%s)", m.status.FrameIndex+1, m.status.FrameCount, state)) + "\n"

	case types.StageError:
		s += errorStyle.Render("Error: "+m.status.Err) + "\n"
	}

	if m.actionErr != "" {
		s += errorStyle.Render(m.actionErr) + "\n"
	}

	s += "\n" + helpStyle.Render(m.helpLine())
	return appStyle.Render(s)
}

func (m *Model) helpLine() string {
	if m.editing {
		return "enter/esc: done editing"
	}
	if m.status.Stage == types.StageProcessing {
		return "q: quit"
	}
	help := "s: start · v: mode · e: edit path · q: quit"
	if m.status.FrameCount > 0 {
		help = "space: play/pause · ←/→: scrub · r: reset · +/-: rate · " + help
	}
	return help
}
