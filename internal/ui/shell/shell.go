// Package shell owns the main window and swaps screens as the user signs in and out.
package shell

import (
	"context"
	"log"
	"sync"
	"time"

	"fittrack/internal/auth"
	"fittrack/internal/core/model"
	"fittrack/internal/core/session"
	"fittrack/internal/ui/history"
	"fittrack/internal/ui/home"
	"fittrack/internal/ui/login"
	"fittrack/internal/ui/workout"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Screen names reported by Current.
const (
	ScreenLoading = "loading"
	ScreenLogin   = "login"
	ScreenHome    = "home"
	ScreenWorkout = "workout"
	ScreenHistory = "history"
)

const signOutTimeout = 10 * time.Second

// Authenticator is what the shell needs from auth.Manager.
type Authenticator interface {
	login.Authenticator
	SignOut(ctx context.Context) error
	State() *auth.State
}

// HistoryStore both records and lists completed workouts.
type HistoryStore interface {
	session.HistoryAppender
	history.Reader
}

// WorkoutObserver is told about the active workout, e.g. the tray.
type WorkoutObserver interface {
	SetWorkout(snapshot session.Snapshot)
	ClearWorkout()
}

// Config wires the shell to the rest of the client.
type Config struct {
	Window      fyne.Window
	Auth        Authenticator
	History     HistoryStore
	Announcer   session.Announcer
	Catalog     func() []model.WorkoutSpec
	Credentials login.CredentialSource
	Observer    WorkoutObserver
	Clock       session.Clock
	// Dispatch runs UI updates from background goroutines. Defaults to fyne.Do.
	Dispatch func(func())
	Logger   *log.Logger
}

// Shell swaps Login, Home, Workout and History in one window.
type Shell struct {
	config Config
	user   model.User
	home   *home.Screen
	login  *login.Screen
	active *workout.Screen

	mu      sync.Mutex
	current string
	closing sync.WaitGroup
}

// New shows a loading placeholder until the auth state resolves.
func New(config Config) *Shell {
	if config.Logger == nil {
		config.Logger = log.Default()
	}
	if config.Catalog == nil {
		config.Catalog = model.DefaultCatalog
	}
	if config.Dispatch == nil {
		config.Dispatch = fyne.Do
	}
	shell := &Shell{config: config}

	loading := widget.NewLabelWithStyle("Loading...", fyne.TextAlignCenter, fyne.TextStyle{})
	shell.setContent(ScreenLoading, container.NewCenter(loading))
	return shell
}

// Start follows auth state changes until the state is closed.
func (shell *Shell) Start() {
	changes := shell.config.Auth.State().Subscribe(4)
	go func() {
		for change := range changes {
			change := change
			shell.config.Dispatch(func() { shell.Apply(change) })
		}
	}()
}

// Apply switches screens for an auth change. Must run on the UI thread.
func (shell *Shell) Apply(change auth.Change) {
	if !change.SignedIn {
		shell.closeWorkout()
		shell.user = model.User{}
		shell.showLogin()
		return
	}
	if shell.Current() != ScreenLoading && shell.Current() != ScreenLogin && shell.user == change.User {
		return
	}
	shell.user = change.User
	shell.login = nil
	shell.ShowHome()
}

// Current returns the name of the visible screen.
func (shell *Shell) Current() string {
	shell.mu.Lock()
	defer shell.mu.Unlock()
	return shell.current
}

// ShowHome displays the workout catalog.
func (shell *Shell) ShowHome() {
	shell.home = home.New(shell.config.Catalog(), home.Callbacks{
		OnSelect:  func(spec model.WorkoutSpec) { shell.OpenWorkout(spec) },
		OnHistory: shell.ShowHistory,
		OnLogout:  shell.Logout,
	})
	shell.home.SetUser(shell.user)
	shell.setContent(ScreenHome, shell.home.Content())
}

// RefreshCatalog redraws the home list after settings change.
func (shell *Shell) RefreshCatalog() {
	if shell.home != nil {
		shell.home.SetCatalog(shell.config.Catalog())
	}
}

// OpenWorkout starts a fresh session for spec and shows it.
func (shell *Shell) OpenWorkout(spec model.WorkoutSpec) {
	shell.closeWorkout()

	sess, err := session.New(spec, shell.config.History, shell.config.Announcer, session.Config{
		Clock:    shell.config.Clock,
		Dispatch: shell.config.Dispatch,
		Logger:   shell.config.Logger,
	})
	if err != nil {
		shell.config.Logger.Printf("shell: open workout %q: %v", spec.Title, err)
		return
	}

	var screen *workout.Screen
	screen = workout.New(sess, func() {
		shell.track(screen.Close())
		if shell.active == screen {
			shell.active = nil
			shell.clearObserver()
		}
		shell.ShowHome()
	}, func(snapshot session.Snapshot) {
		if shell.active == screen && shell.config.Observer != nil {
			shell.config.Observer.SetWorkout(snapshot)
		}
	})
	screen.SetLogger(shell.config.Logger)
	shell.active = screen

	events := sess.Subscribe(16)
	go func() {
		for range events {
			shell.config.Dispatch(screen.Refresh)
		}
	}()

	screen.Refresh()
	shell.setContent(ScreenWorkout, screen.Content())
}

// ShowHistory displays completed workouts.
func (shell *Shell) ShowHistory() {
	screen := history.New(shell.config.History, shell.ShowHome)
	shell.setContent(ScreenHistory, screen.Content())
	screen.Reload(context.Background())
}

// Logout signs out in the background; the state change returns to Login.
func (shell *Shell) Logout() {
	shell.closeWorkout()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), signOutTimeout)
		defer cancel()
		if err := shell.config.Auth.SignOut(ctx); err != nil {
			shell.config.Logger.Printf("shell: sign out: %v", err)
		}
	}()
}

// TogglePause starts or pauses the active workout, if any.
func (shell *Shell) TogglePause() {
	if shell.active != nil {
		shell.active.TogglePause()
	}
}

// Reset rewinds the active workout, if any.
func (shell *Shell) Reset() {
	if shell.active != nil {
		shell.active.Reset()
	}
}

// Close tears down the active workout and waits for every session teardown,
// so completed workouts are saved before the process exits.
func (shell *Shell) Close() {
	shell.closeWorkout()
	shell.closing.Wait()
}

func (shell *Shell) showLogin() {
	screen := login.New(shell.config.Auth, shell.config.Credentials)
	shell.login = screen
	shell.home = nil
	shell.setContent(ScreenLogin, screen.Content())
}

func (shell *Shell) closeWorkout() {
	if shell.active == nil {
		return
	}
	active := shell.active
	shell.active = nil
	shell.track(active.Close())
	shell.clearObserver()
}

func (shell *Shell) track(done <-chan struct{}) {
	shell.closing.Add(1)
	go func() {
		defer shell.closing.Done()
		<-done
	}()
}

func (shell *Shell) clearObserver() {
	if shell.config.Observer != nil {
		shell.config.Observer.ClearWorkout()
	}
}

func (shell *Shell) setContent(name string, content fyne.CanvasObject) {
	shell.mu.Lock()
	shell.current = name
	shell.mu.Unlock()
	shell.config.Window.SetContent(content)
}
