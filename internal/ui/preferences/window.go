package preferences

import (
	"strconv"

	"fittrack/internal/core/model"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Window handles the preferences UI.
type Window struct {
	window   fyne.Window
	settings Settings
	onSave   func(Settings)
	onCancel func()
	spoken   *widget.Check
	voice    *widget.Entry
	remember *widget.Check
	workouts []*widget.Entry
	buttons  fyne.CanvasObject
}

// New creates a preferences window.
func New(app fyne.App, settings Settings, onSave func(Settings)) *Window {
	window := app.NewWindow("FitTrack Settings")

	spoken := widget.NewCheck("Spoken prompts", nil)
	voice := widget.NewEntry()
	voice.SetPlaceHolder("System default")
	remember := widget.NewCheck("Remember me on this computer", nil)

	saveButton := widget.NewButton("Save", nil)
	cancelButton := widget.NewButton("Cancel", nil)

	prefs := &Window{
		window:   window,
		onSave:   onSave,
		spoken:   spoken,
		voice:    voice,
		remember: remember,
		buttons:  container.NewHBox(saveButton, layout.NewSpacer(), cancelButton),
	}

	spoken.OnChanged = func(checked bool) {
		if checked {
			voice.Enable()
		} else {
			voice.Disable()
		}
	}

	saveButton.OnTapped = prefs.handleSave
	cancelButton.OnTapped = func() {
		window.Hide()
		prefs.UpdateSettings(prefs.settings)
		if prefs.onCancel != nil {
			prefs.onCancel()
		}
	}

	prefs.UpdateSettings(settings)
	window.Resize(fyne.NewSize(380, 420))
	window.SetCloseIntercept(window.Hide)
	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// SetOnCancel registers a callback for discarded edits.
func (prefs *Window) SetOnCancel(callback func()) {
	prefs.onCancel = callback
}

// Settings returns the last saved settings.
func (prefs *Window) Settings() Settings {
	return prefs.settings
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.spoken.SetChecked(settings.SpokenPrompts)
	prefs.voice.SetText(settings.Voice)
	if settings.SpokenPrompts {
		prefs.voice.Enable()
	} else {
		prefs.voice.Disable()
	}
	prefs.remember.SetChecked(settings.RememberMe)

	catalog := settings.Catalog()
	prefs.workouts = make([]*widget.Entry, len(catalog))
	rows := make([]fyne.CanvasObject, 0, len(catalog))
	for i, spec := range catalog {
		entry := widget.NewEntry()
		entry.SetText(strconv.Itoa(spec.TotalSeconds))
		prefs.workouts[i] = entry
		rows = append(rows, container.NewHBox(widget.NewLabel(spec.Title), layout.NewSpacer(), entry, widget.NewLabel("sec")))
	}

	form := container.NewVBox(
		widget.NewLabelWithStyle("Prompts", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		prefs.spoken,
		container.NewBorder(nil, nil, widget.NewLabel("Voice"), nil, prefs.voice),
		widget.NewLabelWithStyle("Account", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		prefs.remember,
		widget.NewLabelWithStyle("Workouts", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
	)
	for _, row := range rows {
		form.Add(row)
	}
	prefs.window.SetContent(container.NewBorder(nil, prefs.buttons, nil, nil, container.NewVScroll(form)))
}

func (prefs *Window) handleSave() {
	settings := prefs.settings
	settings.SpokenPrompts = prefs.spoken.Checked
	settings.Voice = prefs.voice.Text
	settings.RememberMe = prefs.remember.Checked

	catalog := settings.Catalog()
	workouts := make([]model.WorkoutSpec, len(catalog))
	for i, spec := range catalog {
		if seconds, ok := parsePositiveInt(prefs.workouts[i].Text); ok {
			spec.TotalSeconds = seconds
		}
		workouts[i] = spec
	}
	settings.Workouts = workouts

	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
