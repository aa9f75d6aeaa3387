package main

import (
	"context"
	"log"
	"time"

	"fittrack/internal/auth"
	"fittrack/internal/core/model"
	"fittrack/internal/core/session"
	"fittrack/internal/platform"
	"fittrack/internal/storage"
	"fittrack/internal/storage/kv"
	"fittrack/internal/ui/login"
	"fittrack/internal/ui/preferences"
	"fittrack/internal/ui/shell"
	"fittrack/internal/ui/tray"
	"fittrack/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
)

const (
	appName          = "FitTrack"
	autoLoginTimeout = 15 * time.Second
)

func main() {
	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		log.Printf("single instance: %v", err)
		return
	}
	defer func() {
		_ = guard.Release()
	}()

	dirs, err := platform.AppDirs("", appName)
	if err != nil {
		log.Printf("app dirs: %v", err)
		return
	}

	settingsPath := storage.SettingsPath(dirs.Config)
	settings, err := storage.LoadSettings(settingsPath)
	if err != nil {
		log.Printf("settings: %v", err)
	}

	store, err := openStore(settings.StorageBackend, dirs)
	if err != nil {
		log.Printf("storage: %v", err)
		return
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("storage close: %v", err)
		}
	}()
	historyStore := storage.NewHistoryStore(store)

	fyneApp := app.NewWithID("com.fittrack.app")
	fyneApp.SetIcon(resources.MustLogo(resources.LogoActive))

	google := newGoogleSignIn(settings, fyneApp)
	var credentials login.CredentialSource
	if google != nil {
		credentials = google.Credential
	}

	state := auth.NewState()
	defer state.Close()
	manager := auth.NewManager(newProvider(settings, store, google), state, store, settings.RememberMe, nil)

	speaker, announcer := newAnnouncer(settings)
	if speaker != nil {
		defer speaker.Close()
	}

	window := fyneApp.NewWindow(appName)
	window.Resize(fyne.NewSize(420, 640))
	window.SetMaster()

	var appShell *shell.Shell
	var observer shell.WorkoutObserver

	prefsWindow := preferences.New(fyneApp, settings, func(updated preferences.Settings) {
		settings = updated
		if err := storage.SaveSettings(settingsPath, settings); err != nil {
			log.Printf("settings save: %v", err)
		}
		if speaker != nil {
			speaker.SetEnabled(settings.SpokenPrompts)
			speaker.SetVoice(settings.Voice)
		}
		manager.SetRememberMe(context.Background(), settings.RememberMe)
		appShell.RefreshCatalog()
	})

	if desktopApp, ok := fyneApp.(desktop.App); ok {
		observer = tray.New(desktopApp, tray.Icons{
			Active: resources.MustLogo(resources.LogoActive),
			Paused: resources.MustLogo(resources.LogoPaused),
		}, tray.Callbacks{
			OnShow: func() {
				window.Show()
				window.RequestFocus()
			},
			OnPreferences: prefsWindow.Show,
			OnTogglePause: func() { appShell.TogglePause() },
			OnReset:       func() { appShell.Reset() },
			OnQuit: func() {
				appShell.Close()
				fyneApp.Quit()
			},
		})
		window.SetCloseIntercept(window.Hide)
	} else {
		log.Printf("system tray unsupported on this platform")
	}

	appShell = shell.New(shell.Config{
		Window:      window,
		Auth:        manager,
		History:     historyStore,
		Announcer:   announcer,
		Catalog:     func() []model.WorkoutSpec { return settings.Catalog() },
		Credentials: credentials,
		Observer:    observer,
	})

	guard.OnActivate(func() {
		fyne.Do(func() {
			window.Show()
			window.RequestFocus()
		})
	})

	appShell.Start()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), autoLoginTimeout)
		defer cancel()
		if _, _, err := manager.AutoLogin(ctx); err != nil {
			log.Printf("auto login: %v", err)
		}
	}()

	window.Show()
	fyneApp.Run()
	appShell.Close()
}

func openStore(backend string, dirs platform.Dirs) (kv.Store, error) {
	if backend == preferences.BackendSQLite {
		store, err := kv.OpenSQLite(dirs.Database)
		if err == nil {
			return store, nil
		}
		log.Printf("sqlite store unavailable, using files: %v", err)
	}
	return kv.OpenFileStore(dirs.Data)
}

// newGoogleSignIn returns nil when no OAuth client is configured, which hides Google sign-in.
func newGoogleSignIn(settings preferences.Settings, fyneApp fyne.App) *auth.GoogleSignIn {
	if settings.GoogleClientID == "" {
		return nil
	}
	google, err := auth.NewGoogleSignIn(auth.GoogleOptions{
		ClientID:     settings.GoogleClientID,
		ClientSecret: settings.GoogleClientSecret,
		OpenURL:      fyneApp.OpenURL,
	})
	if err != nil {
		log.Printf("google sign-in: %v", err)
		return nil
	}
	return google
}

func newProvider(settings preferences.Settings, store kv.Store, google *auth.GoogleSignIn) auth.Provider {
	if settings.IdentityProvider == preferences.ProviderFirebase {
		provider, err := auth.NewFirebaseProvider(auth.FirebaseOptions{APIKey: settings.FirebaseAPIKey})
		if err == nil {
			return provider
		}
		log.Printf("firebase provider: %v, using local accounts", err)
	}
	options := auth.LocalOptions{}
	if google != nil {
		options.Verifier = google
	}
	return auth.NewLocalProvider(store, options)
}

func newAnnouncer(settings preferences.Settings) (*platform.Speaker, session.Announcer) {
	speaker, err := platform.NewSpeaker(settings.Voice, nil)
	if err != nil {
		log.Printf("speech: %v", err)
		return nil, platform.MutedAnnouncer{}
	}
	speaker.SetEnabled(settings.SpokenPrompts)
	return speaker, speaker
}
