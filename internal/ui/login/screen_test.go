package login

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fittrack/internal/auth"
	"fittrack/internal/core/model"

	"fyne.io/fyne/v2/test"
)

type fakeAuthenticator struct {
	calls     []string
	err       error
	federated bool
	remember  bool
}

func (fake *fakeAuthenticator) SignIn(ctx context.Context, email, password string) (model.User, error) {
	fake.calls = append(fake.calls, "signIn:"+email)
	return model.User{Email: email}, fake.err
}

func (fake *fakeAuthenticator) CreateAccount(ctx context.Context, email, password string) (model.User, error) {
	fake.calls = append(fake.calls, "createAccount:"+email)
	return model.User{Email: email}, fake.err
}

func (fake *fakeAuthenticator) SignInWithCredential(ctx context.Context, credential auth.Credential) (model.User, error) {
	fake.calls = append(fake.calls, "credential:"+credential.IDToken)
	return model.User{}, fake.err
}

func (fake *fakeAuthenticator) FederatedAvailable() bool {
	return fake.federated
}

func (fake *fakeAuthenticator) RememberMe() bool {
	return fake.remember
}

func (fake *fakeAuthenticator) SetRememberMe(ctx context.Context, remember bool) {
	fake.remember = remember
}

func newScreen(t *testing.T, fake *fakeAuthenticator, credentials CredentialSource) *Screen {
	t.Helper()
	test.NewTempApp(t)
	screen := New(fake, credentials)
	screen.run = func(job func()) { job() }
	return screen
}

func TestEmptyFieldsShowValidationMessage(t *testing.T) {
	fake := &fakeAuthenticator{}
	screen := newScreen(t, fake, nil)

	test.Tap(screen.signIn)
	assert.Equal(t, "Please enter both email and password.", screen.Error())

	test.Type(screen.email, "alice@example.com")
	test.Tap(screen.signUp)
	assert.Equal(t, "Please enter both email and password.", screen.Error())
	assert.Empty(t, fake.calls)
}

func TestProviderErrorShownVerbatim(t *testing.T) {
	fake := &fakeAuthenticator{err: &model.AuthError{Op: "signIn", Message: "Firebase: Error (auth/invalid-credential)."}}
	screen := newScreen(t, fake, nil)

	test.Type(screen.email, "alice@example.com")
	test.Type(screen.password, "wrong")
	test.Tap(screen.signIn)

	assert.Equal(t, []string{"signIn:alice@example.com"}, fake.calls)
	assert.Equal(t, "Firebase: Error (auth/invalid-credential).", screen.Error())
	assert.False(t, screen.signIn.Disabled())
}

func TestSuccessfulSignUpClearsPassword(t *testing.T) {
	fake := &fakeAuthenticator{}
	screen := newScreen(t, fake, nil)

	test.Type(screen.email, "bob@example.com")
	test.Type(screen.password, "hunter22")
	test.Tap(screen.signUp)

	assert.Equal(t, []string{"createAccount:bob@example.com"}, fake.calls)
	assert.Empty(t, screen.Error())
	assert.Empty(t, screen.password.Text)
}

func TestRememberMeToggle(t *testing.T) {
	fake := &fakeAuthenticator{remember: true}
	screen := newScreen(t, fake, nil)
	require.True(t, screen.remember.Checked)

	test.Tap(screen.remember)
	assert.False(t, fake.remember)
}

func TestGoogleButton(t *testing.T) {
	source := func(ctx context.Context) (auth.Credential, error) {
		return auth.Credential{ProviderID: auth.ProviderGoogle, IDToken: "google-id"}, nil
	}

	t.Run("hidden without source", func(t *testing.T) {
		screen := newScreen(t, &fakeAuthenticator{federated: true}, nil)
		assert.False(t, screen.google.Visible())
	})

	t.Run("hidden when provider lacks federation", func(t *testing.T) {
		screen := newScreen(t, &fakeAuthenticator{}, source)
		assert.False(t, screen.google.Visible())
	})

	t.Run("signs in with credential", func(t *testing.T) {
		fake := &fakeAuthenticator{federated: true}
		screen := newScreen(t, fake, source)
		require.True(t, screen.google.Visible())

		test.Tap(screen.google)
		assert.Equal(t, []string{"credential:google-id"}, fake.calls)
	})

	t.Run("consent dismissed", func(t *testing.T) {
		fake := &fakeAuthenticator{federated: true}
		screen := newScreen(t, fake, func(ctx context.Context) (auth.Credential, error) {
			return auth.Credential{}, context.Canceled
		})

		test.Tap(screen.google)
		assert.Empty(t, fake.calls)
		assert.Empty(t, screen.Error())
	})

	t.Run("consent fails", func(t *testing.T) {
		fake := &fakeAuthenticator{federated: true}
		screen := newScreen(t, fake, func(ctx context.Context) (auth.Credential, error) {
			return auth.Credential{}, errors.New("browser unavailable")
		})

		test.Tap(screen.google)
		assert.Equal(t, "browser unavailable", screen.Error())
	})
}
