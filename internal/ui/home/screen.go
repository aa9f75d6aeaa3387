// Package home lists the workout catalog.
package home

import (
	"fmt"

	"fittrack/internal/core/model"
	"fittrack/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Callbacks defines home screen actions.
type Callbacks struct {
	OnSelect  func(model.WorkoutSpec)
	OnHistory func()
	OnLogout  func()
}

// Screen shows the catalog and account actions.
type Screen struct {
	catalog   []model.WorkoutSpec
	callbacks Callbacks
	greeting  *widget.Label
	list      *widget.List
	history   *widget.Button
	logout    *widget.Button
	content   fyne.CanvasObject
}

// New builds the home screen for catalog.
func New(catalog []model.WorkoutSpec, callbacks Callbacks) *Screen {
	screen := &Screen{catalog: catalog, callbacks: callbacks}

	screen.greeting = widget.NewLabel("")
	screen.list = widget.NewList(
		func() int { return len(screen.catalog) },
		func() fyne.CanvasObject {
			icon := widget.NewIcon(nil)
			title := widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
			duration := widget.NewLabel("")
			return container.NewBorder(nil, nil, icon, nil, container.NewVBox(title, duration))
		},
		func(id widget.ListItemID, item fyne.CanvasObject) {
			spec := screen.catalog[id]
			row := item.(*fyne.Container)
			texts := row.Objects[0].(*fyne.Container)
			texts.Objects[0].(*widget.Label).SetText(spec.Title)
			texts.Objects[1].(*widget.Label).SetText(DurationLabel(spec))
			row.Objects[1].(*widget.Icon).SetResource(resources.WorkoutIcon(spec.Title))
		},
	)
	screen.list.OnSelected = func(id widget.ListItemID) {
		screen.list.UnselectAll()
		if id < 0 || id >= len(screen.catalog) {
			return
		}
		if screen.callbacks.OnSelect != nil {
			screen.callbacks.OnSelect(screen.catalog[id])
		}
	}

	screen.history = widget.NewButton("View History", func() {
		if screen.callbacks.OnHistory != nil {
			screen.callbacks.OnHistory()
		}
	})
	screen.logout = widget.NewButton("Logout", func() {
		if screen.callbacks.OnLogout != nil {
			screen.callbacks.OnLogout()
		}
	})

	header := container.NewVBox(
		widget.NewLabelWithStyle("Choose Your Workout", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		screen.greeting,
	)
	buttons := container.NewGridWithColumns(2, screen.history, screen.logout)
	screen.content = container.NewBorder(header, buttons, nil, nil, screen.list)
	return screen
}

// Content returns the screen's root object.
func (screen *Screen) Content() fyne.CanvasObject {
	return screen.content
}

// SetUser greets the signed-in user.
func (screen *Screen) SetUser(user model.User) {
	label := user.Label()
	if label == "" {
		screen.greeting.SetText("")
		return
	}
	screen.greeting.SetText("Signed in as " + label)
}

// SetCatalog replaces the listed workouts.
func (screen *Screen) SetCatalog(catalog []model.WorkoutSpec) {
	screen.catalog = catalog
	screen.list.Refresh()
}

// DurationLabel renders a workout length, e.g. "30 seconds".
func DurationLabel(spec model.WorkoutSpec) string {
	if spec.TotalSeconds == 1 {
		return "1 second"
	}
	return fmt.Sprintf("%d seconds", spec.TotalSeconds)
}
