//go:build !nogui
// +build !nogui

// Package gui is the desktop surface for the sequence panel. It wraps
// the panel orchestrator in a fyne window and refreshes the widgets on
// the same tick that drives playback.
package gui

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"splay4d/internal/config"
	"splay4d/internal/panel"
	"splay4d/internal/scene"
	"splay4d/pkg/types"
)

// App is the GUI application
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	cfg        *config.Config
	panel      *panel.Panel

	pathEntry   *widget.Entry
	videoCheck  *widget.Check
	rateEntry   *widget.Entry
	startButton *widget.Button
	playButton  *widget.Button
	frameSlider *widget.Slider
	progressBar *widget.ProgressBar
	statusLabel *widget.Label
	frameLabel  *widget.Label

	stopRefresh chan struct{}
}

// NewApp creates the GUI application around an orchestrator
func NewApp(cfg *config.Config, p *panel.Panel) *App {
	a := &App{
		fyneApp:     app.NewWithID("splay4d"),
		cfg:         cfg,
		panel:       p,
		stopRefresh: make(chan struct{}),
	}
	a.mainWindow = a.fyneApp.NewWindow("Splat 4D Video")
	a.buildUI()
	return a
}

func (a *App) buildUI() {
	a.pathEntry = widget.NewEntry()
	a.pathEntry.SetPlaceHolder("Path to video or frame directory")
	a.pathEntry.SetText(a.cfg.Input.Path)

	a.videoCheck = widget.NewCheck("Video file input", nil)
	a.videoCheck.SetChecked(a.cfg.Input.VideoMode)

	a.rateEntry = widget.NewEntry()
	a.rateEntry.SetText(fmt.Sprintf("%.1f", a.cfg.Playback.FrameRate))
	a.rateEntry.OnSubmitted = func(s string) {
		var rate float64
		if _, err := fmt.Sscanf(s, "%f", &rate); err == nil && rate > 0 {
			a.panel.SetRate(rate)
		}
	}

	a.startButton = widget.NewButton("Generate", a.onStart)
	a.playButton = widget.NewButton("Play", func() {
		a.panel.TogglePlay()
	})
	a.playButton.Disable()

	a.frameSlider = widget.NewSlider(0, 0)
	a.frameSlider.OnChanged = func(v float64) {
		st := a.panel.Status()
		if !st.Playing && st.FrameCount > 0 {
			if err := a.panel.SetFrameIndex(int(v)); err != nil {
				a.statusLabel.SetText(err.Error())
			}
		}
	}

	a.progressBar = widget.NewProgressBar()
	a.progressBar.Hide()
	a.statusLabel = widget.NewLabel("Idle")
	a.frameLabel = widget.NewLabel("")

	form := widget.NewForm(
		widget.NewFormItem("Input", a.pathEntry),
		widget.NewFormItem("", a.videoCheck),
		widget.NewFormItem("Frame rate", a.rateEntry),
	)

	content := container.NewVBox(
		form,
		a.startButton,
		a.progressBar,
		a.statusLabel,
		widget.NewSeparator(),
		container.NewBorder(nil, nil, a.playButton, a.frameLabel, a.frameSlider),
	)

	a.mainWindow.SetContent(content)
	a.mainWindow.Resize(fyne.NewSize(480, 320))
}

func (a *App) onStart() {
	if err := a.panel.StartConversion(a.pathEntry.Text, a.videoCheck.Checked); err != nil {
		dialog.ShowError(err, a.mainWindow)
		return
	}
	a.startButton.Disable()
}

// refresh drives playback and mirrors orchestrator state into widgets
func (a *App) refresh() {
	a.panel.Tick()
	st := a.panel.Status()

	switch st.Stage {
	case types.StageProcessing:
		a.progressBar.Show()
		a.progressBar.SetValue(st.Progress / 100)
		text := st.StatusText
		if st.FramesReady > 0 {
			text = fmt.Sprintf("%s (%d frames ready)", text, st.FramesReady)
		}
		a.statusLabel.SetText(text)

	case types.StagePlaying:
		a.progressBar.Hide()
		a.startButton.Enable()
		a.playButton.Enable()
		a.frameSlider.Max = float64(st.FrameCount - 1)
		if st.Playing {
			a.playButton.SetText("Pause")
			a.frameSlider.Value = float64(st.FrameIndex)
			a.frameSlider.Refresh()
		} else {
			a.playButton.SetText("Play")
		}
		a.statusLabel.SetText(fmt.Sprintf("%.1f fps", st.FrameRate))
		a.frameLabel.SetText(fmt.Sprintf("%d/%d", st.FrameIndex+1, st.FrameCount))

	case types.StageError:
		a.progressBar.Hide()
		a.startButton.Enable()
		a.statusLabel.SetText("Error: " + st.Err)

	default:
		a.statusLabel.SetText("Idle")
	}
}

// Run shows the window and blocks until it closes
func (a *App) Run() {
	ticker := time.NewTicker(time.Second / 30)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				a.refresh()
			case <-a.stopRefresh:
				return
			}
		}
	}()

	a.mainWindow.SetOnClosed(func() {
		close(a.stopRefresh)
		a.panel.Close()
	})
	a.mainWindow.ShowAndRun()
}

// StartGUI launches the desktop panel
func StartGUI(cfg *config.Config) error {
	p := panel.New(cfg, scene.NewMemoryGraph())
	NewApp(cfg, p).Run()
	return nil
}

// IsGUIAvailable returns whether the GUI is available in this build
func IsGUIAvailable() bool {
	return true
}
