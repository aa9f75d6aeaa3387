package auth

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"fittrack/internal/core/model"
	"fittrack/internal/storage/kv"
)

// MissingCredentialsMessage is shown when either login field is empty.
const MissingCredentialsMessage = "Please enter both email and password."

var (
	// RefreshTokenKey caches the provider refresh token when remember me is on.
	RefreshTokenKey = kv.Key("refreshToken")
	// legacyCredentialsKey held plaintext credentials in older installs.
	legacyCredentialsKey = kv.Key("userCreds")
)

// Manager validates input, calls the provider and keeps State current.
type Manager struct {
	mu         sync.Mutex
	provider   Provider
	state      *State
	store      kv.Store
	rememberMe bool
	logger     *log.Logger
}

// NewManager wires provider and state. store caches the refresh token.
func NewManager(provider Provider, state *State, store kv.Store, rememberMe bool, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		provider:   provider,
		state:      state,
		store:      store,
		rememberMe: rememberMe,
		logger:     logger,
	}
}

// State returns the auth state observers subscribe to.
func (manager *Manager) State() *State {
	return manager.state
}

// ValidateCredentials rejects empty fields before any provider call.
func ValidateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return &model.ValidationError{Field: "email", Message: MissingCredentialsMessage}
	}
	if password == "" {
		return &model.ValidationError{Field: "password", Message: MissingCredentialsMessage}
	}
	return nil
}

// SignIn signs in with email and password.
func (manager *Manager) SignIn(ctx context.Context, email, password string) (model.User, error) {
	if err := ValidateCredentials(email, password); err != nil {
		return model.User{}, err
	}
	grant, err := manager.provider.SignInWithPassword(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return model.User{}, asAuthError("signIn", err)
	}
	manager.accept(ctx, grant)
	return grant.User, nil
}

// CreateAccount registers a new account and signs it in.
func (manager *Manager) CreateAccount(ctx context.Context, email, password string) (model.User, error) {
	if err := ValidateCredentials(email, password); err != nil {
		return model.User{}, err
	}
	grant, err := manager.provider.CreateAccount(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return model.User{}, asAuthError("createAccount", err)
	}
	manager.accept(ctx, grant)
	return grant.User, nil
}

// SignInWithCredential exchanges a federated credential for a session.
func (manager *Manager) SignInWithCredential(ctx context.Context, credential Credential) (model.User, error) {
	if !manager.provider.SupportsFederated() {
		return model.User{}, asAuthError("signInWithCredential", ErrFederatedUnsupported)
	}
	if credential.IDToken == "" && credential.AccessToken == "" {
		return model.User{}, &model.ValidationError{Field: "credential", Message: "Missing identity token."}
	}
	grant, err := manager.provider.SignInWithCredential(ctx, credential)
	if err != nil {
		return model.User{}, asAuthError("signInWithCredential", err)
	}
	manager.accept(ctx, grant)
	return grant.User, nil
}

// FederatedAvailable reports whether a federated sign-in button should be offered.
func (manager *Manager) FederatedAvailable() bool {
	return manager.provider.SupportsFederated()
}

// AutoLogin resumes the cached session, if any, and resolves State either way.
// A token the provider rejects is deleted.
func (manager *Manager) AutoLogin(ctx context.Context) (model.User, bool, error) {
	if err := manager.store.Remove(ctx, legacyCredentialsKey); err != nil {
		manager.logger.Printf("auth: remove legacy credentials: %v", err)
	}

	token, ok, err := manager.store.Get(ctx, RefreshTokenKey)
	if err != nil || !ok || token == "" || !manager.RememberMe() {
		manager.state.signOut()
		return model.User{}, false, err
	}

	grant, err := manager.provider.Refresh(ctx, token)
	if err != nil {
		var authErr *model.AuthError
		if errors.As(err, &authErr) {
			manager.forgetToken(ctx)
		}
		manager.state.signOut()
		return model.User{}, false, asAuthError("refresh", err)
	}
	manager.accept(ctx, grant)
	return grant.User, true, nil
}

// SignOut ends the session and forgets the cached token.
func (manager *Manager) SignOut(ctx context.Context) error {
	err := manager.provider.SignOut(ctx)
	manager.forgetToken(ctx)
	manager.state.signOut()
	if err != nil {
		return asAuthError("signOut", err)
	}
	return nil
}

// RememberMe reports whether sign-ins are cached across restarts.
func (manager *Manager) RememberMe() bool {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	return manager.rememberMe
}

// SetRememberMe toggles caching. Turning it off drops the cached token.
func (manager *Manager) SetRememberMe(ctx context.Context, remember bool) {
	manager.mu.Lock()
	manager.rememberMe = remember
	manager.mu.Unlock()
	if !remember {
		manager.forgetToken(ctx)
	}
}

func (manager *Manager) accept(ctx context.Context, grant Grant) {
	if manager.RememberMe() && grant.RefreshToken != "" {
		if err := manager.store.Set(ctx, RefreshTokenKey, grant.RefreshToken); err != nil {
			manager.logger.Printf("auth: cache refresh token: %v", err)
		}
	}
	manager.state.signIn(grant.User)
}

func (manager *Manager) forgetToken(ctx context.Context) {
	if err := manager.store.Remove(ctx, RefreshTokenKey); err != nil {
		manager.logger.Printf("auth: forget refresh token: %v", err)
	}
}

func asAuthError(op string, err error) error {
	var authErr *model.AuthError
	if errors.As(err, &authErr) {
		return authErr
	}
	message := "Authentication failed. Please try again."
	if errors.Is(err, ErrFederatedUnsupported) {
		message = "Google sign-in is not available."
	} else if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		message = "The request timed out. Please try again."
	}
	return &model.AuthError{Op: op, Message: message, Err: err}
}
