// Package workout renders a running workout session.
package workout

import (
	"errors"
	"fmt"
	"image/color"
	"log"
	"sync"

	"fittrack/internal/core/session"
	"fittrack/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Motivation is shown under the workout title.
const Motivation = "You got this! Stay strong 💪"

// Controller is the session surface the screen drives.
type Controller interface {
	Start() error
	Pause() error
	Reset() error
	Snapshot() session.Snapshot
	Close()
}

// Screen shows the countdown for one session and owns it until Back.
type Screen struct {
	controller Controller
	onBack     func()
	onUpdate   func(session.Snapshot)
	logger     *log.Logger
	run        func(func())
	closeOnce  sync.Once
	closed     chan struct{}

	titleLabel *canvas.Text
	progress   *widget.ProgressBar
	timerLabel *canvas.Text
	statusText *widget.Label
	toggle     *widget.Button
	reset      *widget.Button
	back       *widget.Button
	content    fyne.CanvasObject
}

// New builds the screen. The owner calls Refresh when the session changes;
// onUpdate, if set, receives every rendered snapshot.
func New(controller Controller, onBack func(), onUpdate func(session.Snapshot)) *Screen {
	screen := &Screen{
		controller: controller,
		onBack:     onBack,
		onUpdate:   onUpdate,
		logger:     log.Default(),
		run:        func(job func()) { go job() },
	}

	snapshot := controller.Snapshot()

	screen.titleLabel = canvas.NewText(snapshot.Title, color.NRGBA{R: 0, G: 234, B: 255, A: 255})
	screen.titleLabel.TextSize = 26
	screen.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	screen.titleLabel.Alignment = fyne.TextAlignCenter

	motivation := widget.NewLabelWithStyle(Motivation, fyne.TextAlignCenter, fyne.TextStyle{Italic: true})

	screen.progress = widget.NewProgressBar()
	screen.progress.Min = 0
	screen.progress.Max = 100
	screen.progress.TextFormatter = func() string {
		return fmt.Sprintf("%.0f%%", screen.progress.Value)
	}

	screen.timerLabel = canvas.NewText("", color.NRGBA{R: 232, G: 190, B: 66, A: 255})
	screen.timerLabel.TextSize = 40
	screen.timerLabel.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	screen.timerLabel.Alignment = fyne.TextAlignCenter

	screen.statusText = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{})

	screen.toggle = widget.NewButton("Start", screen.handleToggle)
	screen.toggle.Importance = widget.HighImportance
	screen.reset = widget.NewButton("Reset", screen.handleReset)
	screen.back = widget.NewButton("Back", screen.handleBack)

	icon := canvas.NewImageFromResource(resources.WorkoutIcon(snapshot.Title))
	icon.FillMode = canvas.ImageFillContain
	icon.SetMinSize(fyne.NewSize(64, 64))

	body := container.NewVBox(
		container.NewCenter(icon),
		screen.titleLabel,
		motivation,
		screen.timerLabel,
		screen.progress,
		screen.statusText,
		container.NewGridWithColumns(2, screen.toggle, screen.reset),
	)
	screen.content = container.NewBorder(nil, screen.back, nil, nil, container.NewCenter(body))

	screen.render(snapshot)
	return screen
}

// Content returns the screen's root object.
func (screen *Screen) Content() fyne.CanvasObject {
	return screen.content
}

// SetLogger overrides the logger used for rejected actions.
func (screen *Screen) SetLogger(logger *log.Logger) {
	if logger != nil {
		screen.logger = logger
	}
}

// Refresh redraws from the current session state. Must run on the UI thread.
func (screen *Screen) Refresh() {
	screen.render(screen.controller.Snapshot())
}

// TogglePause starts, resumes or pauses the countdown.
func (screen *Screen) TogglePause() {
	screen.handleToggle()
}

// Reset rewinds the countdown.
func (screen *Screen) Reset() {
	screen.handleReset()
}

// Close tears down the session off the UI thread, since it waits for pending
// history writes. The returned channel is closed once teardown finishes.
func (screen *Screen) Close() <-chan struct{} {
	screen.closeOnce.Do(func() {
		closed := make(chan struct{})
		screen.closed = closed
		screen.run(func() {
			defer close(closed)
			screen.controller.Close()
		})
	})
	return screen.closed
}

func (screen *Screen) handleToggle() {
	var err error
	if screen.controller.Snapshot().Status == session.StatusRunning {
		err = screen.controller.Pause()
	} else {
		err = screen.controller.Start()
	}
	screen.report("toggle", err)
	screen.Refresh()
}

func (screen *Screen) handleReset() {
	screen.report("reset", screen.controller.Reset())
	screen.Refresh()
}

func (screen *Screen) handleBack() {
	screen.Close()
	if screen.onBack != nil {
		screen.onBack()
	}
}

func (screen *Screen) report(action string, err error) {
	if err == nil || errors.Is(err, session.ErrClosed) {
		return
	}
	screen.logger.Printf("workout: %s: %v", action, err)
}

func (screen *Screen) render(snapshot session.Snapshot) {
	screen.timerLabel.Text = fmt.Sprintf("%ds", snapshot.Remaining)
	screen.timerLabel.Refresh()
	screen.progress.SetValue(snapshot.Progress)
	screen.statusText.SetText(statusText(snapshot.Status))

	switch snapshot.Status {
	case session.StatusRunning:
		screen.toggle.SetText("Pause")
		screen.toggle.Enable()
	case session.StatusCompleted:
		screen.toggle.SetText("Start")
		screen.toggle.Disable()
	default:
		screen.toggle.SetText("Start")
		screen.toggle.Enable()
	}

	if screen.onUpdate != nil {
		screen.onUpdate(snapshot)
	}
}

func statusText(status session.Status) string {
	switch status {
	case session.StatusRunning:
		return "Keep going"
	case session.StatusPaused:
		return "Paused"
	case session.StatusCompleted:
		return "Workout complete!"
	default:
		return "Ready"
	}
}
