package tray

import (
	"fmt"

	"fittrack/internal/core/session"

	"fyne.io/fyne/v2"
)

// Host is the part of desktop.App the tray needs.
type Host interface {
	SetSystemTrayMenu(menu *fyne.Menu)
	SetSystemTrayIcon(icon fyne.Resource)
}

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShow        func()
	OnPreferences func()
	OnTogglePause func()
	OnReset       func()
	OnQuit        func()
}

// Icons are swapped while a workout is paused.
type Icons struct {
	Active fyne.Resource
	Paused fyne.Resource
}

// Manager handles system tray state.
type Manager struct {
	app        Host
	icons      Icons
	callbacks  Callbacks
	statusItem *fyne.MenuItem
	pauseItem  *fyne.MenuItem
	resetItem  *fyne.MenuItem
	menu       *fyne.Menu
	paused     bool
}

// New creates a tray manager with the provided callbacks.
func New(app Host, icons Icons, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		icons:     icons,
		callbacks: callbacks,
	}

	manager.statusItem = fyne.NewMenuItem("", nil)
	manager.statusItem.Disabled = true

	show := fyne.NewMenuItem("Open FitTrack", func() {
		if manager.callbacks.OnShow != nil {
			manager.callbacks.OnShow()
		}
	})
	preferences := fyne.NewMenuItem("Preferences", func() {
		if manager.callbacks.OnPreferences != nil {
			manager.callbacks.OnPreferences()
		}
	})
	manager.pauseItem = fyne.NewMenuItem("Pause", func() {
		if manager.callbacks.OnTogglePause != nil {
			manager.callbacks.OnTogglePause()
		}
	})
	manager.resetItem = fyne.NewMenuItem("Reset", func() {
		if manager.callbacks.OnReset != nil {
			manager.callbacks.OnReset()
		}
	})
	quit := fyne.NewMenuItem("Quit", func() {
		if manager.callbacks.OnQuit != nil {
			manager.callbacks.OnQuit()
		}
	})

	manager.menu = fyne.NewMenu("FitTrack",
		manager.statusItem,
		show,
		fyne.NewMenuItemSeparator(),
		manager.pauseItem,
		manager.resetItem,
		fyne.NewMenuItemSeparator(),
		preferences,
		quit,
	)
	manager.applyIcon()
	manager.ClearWorkout()
	return manager
}

// Menu returns the tray menu.
func (manager *Manager) Menu() *fyne.Menu {
	return manager.menu
}

// SetWorkout reflects the active workout in the tray.
func (manager *Manager) SetWorkout(snapshot session.Snapshot) {
	manager.statusItem.Label = "Status: " + StatusLine(snapshot)
	manager.pauseItem.Disabled = snapshot.Status == session.StatusCompleted
	manager.resetItem.Disabled = false
	if snapshot.Status == session.StatusRunning {
		manager.pauseItem.Label = "Pause"
	} else {
		manager.pauseItem.Label = "Resume"
		if snapshot.Status == session.StatusIdle {
			manager.pauseItem.Label = "Start"
		}
	}
	manager.setPaused(snapshot.Status == session.StatusPaused)
	manager.refreshMenu()
}

// ClearWorkout shows that no workout is open.
func (manager *Manager) ClearWorkout() {
	manager.statusItem.Label = "Status: no active workout"
	manager.pauseItem.Label = "Pause"
	manager.pauseItem.Disabled = true
	manager.resetItem.Disabled = true
	manager.setPaused(false)
	manager.refreshMenu()
}

// StatusLine describes a workout for the tray status item.
func StatusLine(snapshot session.Snapshot) string {
	switch snapshot.Status {
	case session.StatusRunning:
		return fmt.Sprintf("%s, %ds left", snapshot.Title, snapshot.Remaining)
	case session.StatusPaused:
		return fmt.Sprintf("%s, %ds left (paused)", snapshot.Title, snapshot.Remaining)
	case session.StatusCompleted:
		return fmt.Sprintf("%s complete", snapshot.Title)
	default:
		return fmt.Sprintf("%s, ready", snapshot.Title)
	}
}

// Paused reports whether the paused icon is showing.
func (manager *Manager) Paused() bool {
	return manager.paused
}

func (manager *Manager) setPaused(paused bool) {
	if manager.paused == paused {
		return
	}
	manager.paused = paused
	manager.applyIcon()
}

func (manager *Manager) applyIcon() {
	icon := manager.icons.Active
	if manager.paused && manager.icons.Paused != nil {
		icon = manager.icons.Paused
	}
	if manager.app != nil && icon != nil {
		manager.app.SetSystemTrayIcon(icon)
	}
}

func (manager *Manager) refreshMenu() {
	if manager.app != nil {
		manager.app.SetSystemTrayMenu(manager.menu)
	}
}
