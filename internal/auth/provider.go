// Package auth signs users in through an identity provider and tracks who is signed in.
package auth

import (
	"context"
	"errors"

	"fittrack/internal/core/model"
)

// ProviderGoogle identifies Google federated credentials.
const ProviderGoogle = "google.com"

// ErrFederatedUnsupported indicates the provider cannot accept federated credentials.
var ErrFederatedUnsupported = errors.New("federated sign-in unsupported")

// Credential is a token issued by a federated identity provider.
type Credential struct {
	ProviderID  string
	IDToken     string
	AccessToken string
}

// Grant is the result of a successful sign-in.
type Grant struct {
	User         model.User
	RefreshToken string
}

// Provider is the external identity service.
type Provider interface {
	SignInWithPassword(ctx context.Context, email, password string) (Grant, error)
	CreateAccount(ctx context.Context, email, password string) (Grant, error)
	SignInWithCredential(ctx context.Context, credential Credential) (Grant, error)
	// Refresh resumes a previous sign-in from its refresh token.
	Refresh(ctx context.Context, refreshToken string) (Grant, error)
	SignOut(ctx context.Context) error
	SupportsFederated() bool
}
