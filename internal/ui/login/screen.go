// Package login is the sign-in screen.
package login

import (
	"context"
	"errors"
	"image/color"
	"time"

	"fittrack/internal/auth"
	"fittrack/internal/core/model"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const (
	requestTimeout = 30 * time.Second
	// consentTimeout covers the user finishing Google consent in the browser.
	consentTimeout = 3 * time.Minute
)

// Authenticator is the subset of auth.Manager the screen drives.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (model.User, error)
	CreateAccount(ctx context.Context, email, password string) (model.User, error)
	SignInWithCredential(ctx context.Context, credential auth.Credential) (model.User, error)
	FederatedAvailable() bool
	RememberMe() bool
	SetRememberMe(ctx context.Context, remember bool)
}

// CredentialSource obtains a federated credential, e.g. through a browser consent flow.
type CredentialSource func(ctx context.Context) (auth.Credential, error)

// Screen collects credentials and reports failures inline.
type Screen struct {
	authenticator Authenticator
	credentials   CredentialSource
	content       fyne.CanvasObject
	email         *widget.Entry
	password      *widget.Entry
	remember      *widget.Check
	errorText     *widget.Label
	signIn        *widget.Button
	signUp        *widget.Button
	google        *widget.Button
	busy          bool
	run           func(func())
}

// New builds the login screen. credentials may be nil, which hides Google sign-in.
func New(authenticator Authenticator, credentials CredentialSource) *Screen {
	screen := &Screen{
		authenticator: authenticator,
		credentials:   credentials,
		run:           func(job func()) { go job() },
	}

	screen.email = widget.NewEntry()
	screen.email.SetPlaceHolder("Email")
	screen.password = widget.NewPasswordEntry()
	screen.password.SetPlaceHolder("Password")
	screen.password.OnSubmitted = func(string) { screen.submit(false) }

	screen.remember = widget.NewCheck("Remember me", func(checked bool) {
		authenticator.SetRememberMe(context.Background(), checked)
	})
	screen.remember.Checked = authenticator.RememberMe()

	screen.errorText = widget.NewLabel("")
	screen.errorText.Importance = widget.DangerImportance
	screen.errorText.Wrapping = fyne.TextWrapWord

	screen.signIn = widget.NewButton("Login", func() { screen.submit(false) })
	screen.signIn.Importance = widget.HighImportance
	screen.signUp = widget.NewButton("Sign Up", func() { screen.submit(true) })
	screen.google = widget.NewButton("Sign In with Google", screen.submitGoogle)
	if credentials == nil || !authenticator.FederatedAvailable() {
		screen.google.Hide()
	}

	brand := canvas.NewText("FitTrack", color.NRGBA{R: 0, G: 234, B: 255, A: 255})
	brand.TextSize = 28
	brand.TextStyle = fyne.TextStyle{Bold: true}
	brand.Alignment = fyne.TextAlignCenter

	form := container.NewVBox(
		brand,
		widget.NewLabelWithStyle("Welcome Back", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		screen.email,
		screen.password,
		screen.remember,
		screen.errorText,
		screen.signIn,
		widget.NewSeparator(),
		screen.signUp,
		screen.google,
	)
	screen.content = container.NewVScroll(container.NewPadded(form))
	return screen
}

// Content returns the screen's root object.
func (screen *Screen) Content() fyne.CanvasObject {
	return screen.content
}

// GoogleAvailable reports whether Google sign-in is offered.
func (screen *Screen) GoogleAvailable() bool {
	return screen.google.Visible()
}

// Error returns the message currently shown.
func (screen *Screen) Error() string {
	return screen.errorText.Text
}

func (screen *Screen) submit(create bool) {
	if screen.busy {
		return
	}
	screen.setError("")
	email, password := screen.email.Text, screen.password.Text
	if err := auth.ValidateCredentials(email, password); err != nil {
		screen.setError(err.Error())
		return
	}

	screen.setBusy(true)
	screen.run(func() {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		var err error
		if create {
			_, err = screen.authenticator.CreateAccount(ctx, email, password)
		} else {
			_, err = screen.authenticator.SignIn(ctx, email, password)
		}
		fyne.Do(func() { screen.finish(err) })
	})
}

func (screen *Screen) submitGoogle() {
	if screen.busy || screen.credentials == nil {
		return
	}
	screen.setError("")
	screen.setBusy(true)
	screen.run(func() {
		ctx, cancel := context.WithTimeout(context.Background(), consentTimeout)
		defer cancel()

		credential, err := screen.credentials(ctx)
		if err == nil {
			_, err = screen.authenticator.SignInWithCredential(ctx, credential)
		}
		fyne.Do(func() { screen.finish(err) })
	})
}

func (screen *Screen) finish(err error) {
	screen.setBusy(false)
	if err == nil {
		screen.password.SetText("")
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	screen.setError(err.Error())
}

func (screen *Screen) setBusy(busy bool) {
	screen.busy = busy
	for _, button := range []*widget.Button{screen.signIn, screen.signUp, screen.google} {
		if busy {
			button.Disable()
		} else {
			button.Enable()
		}
	}
}

func (screen *Screen) setError(message string) {
	screen.errorText.SetText(message)
}
