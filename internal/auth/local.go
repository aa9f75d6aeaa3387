package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"fittrack/internal/core/model"
	"fittrack/internal/storage/kv"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// ProviderLocal identifies accounts kept by LocalProvider.
	ProviderLocal  = "password"
	localIssuer    = "fittrack-local"
	minPasswordLen = 6
)

var (
	// AccountsKey holds the local account table.
	AccountsKey = kv.Key("accounts")
	// TokenSecretKey holds the per-install signing secret.
	TokenSecretKey = kv.Key("tokenSecret")
)

// Messages shown for local provider rejections.
const (
	MessageInvalidCredential = "Invalid email or password."
	MessageEmailInUse        = "An account with this email already exists."
	MessageWeakPassword      = "Password should be at least 6 characters."
	MessageInvalidEmail      = "Please enter a valid email address."
	MessageSessionExpired    = "Your session has expired. Please sign in again."
)

// FederatedVerifier checks a federated credential and returns the identity it proves.
type FederatedVerifier interface {
	VerifyCredential(ctx context.Context, credential Credential) (model.User, error)
}

// LocalOptions tunes LocalProvider.
type LocalOptions struct {
	BcryptCost int
	TokenTTL   time.Duration
	Verifier   FederatedVerifier
	Now        func() time.Time
}

// LocalProvider keeps accounts in the local store. It needs no network access.
type LocalProvider struct {
	mu      sync.Mutex
	store   kv.Store
	options LocalOptions
	secret  []byte
}

type localAccount struct {
	UID          string    `json:"uid"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName,omitempty"`
	Provider     string    `json:"provider"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (account localAccount) user() model.User {
	return model.User{
		UID:         account.UID,
		Email:       account.Email,
		DisplayName: account.DisplayName,
		Provider:    account.Provider,
	}
}

// NewLocalProvider returns a provider backed by store.
func NewLocalProvider(store kv.Store, options LocalOptions) *LocalProvider {
	if options.BcryptCost == 0 {
		options.BcryptCost = bcrypt.DefaultCost
	}
	if options.TokenTTL <= 0 {
		options.TokenTTL = 30 * 24 * time.Hour
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	return &LocalProvider{store: store, options: options}
}

func (provider *LocalProvider) SignInWithPassword(ctx context.Context, email, password string) (Grant, error) {
	provider.mu.Lock()
	defer provider.mu.Unlock()

	accounts, err := provider.loadAccountsLocked(ctx)
	if err != nil {
		return Grant{}, err
	}
	account, ok := accounts[normalizeEmail(email)]
	if !ok || account.PasswordHash == "" {
		return Grant{}, &model.AuthError{Op: "signIn", Message: MessageInvalidCredential}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return Grant{}, &model.AuthError{Op: "signIn", Message: MessageInvalidCredential, Err: err}
	}
	return provider.grantLocked(ctx, account)
}

func (provider *LocalProvider) CreateAccount(ctx context.Context, email, password string) (Grant, error) {
	address, err := mail.ParseAddress(email)
	if err != nil || address.Address != strings.TrimSpace(email) {
		return Grant{}, &model.AuthError{Op: "createAccount", Message: MessageInvalidEmail, Err: err}
	}
	if len(password) < minPasswordLen {
		return Grant{}, &model.AuthError{Op: "createAccount", Message: MessageWeakPassword}
	}

	provider.mu.Lock()
	defer provider.mu.Unlock()

	accounts, err := provider.loadAccountsLocked(ctx)
	if err != nil {
		return Grant{}, err
	}
	key := normalizeEmail(email)
	if _, exists := accounts[key]; exists {
		return Grant{}, &model.AuthError{Op: "createAccount", Message: MessageEmailInUse}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), provider.options.BcryptCost)
	if err != nil {
		return Grant{}, fmt.Errorf("hash password: %w", err)
	}
	account := localAccount{
		UID:          uuid.NewString(),
		Email:        address.Address,
		Provider:     ProviderLocal,
		PasswordHash: string(hash),
		CreatedAt:    provider.options.Now().UTC(),
	}
	accounts[key] = account
	if err := provider.saveAccountsLocked(ctx, accounts); err != nil {
		return Grant{}, err
	}
	return provider.grantLocked(ctx, account)
}

func (provider *LocalProvider) SignInWithCredential(ctx context.Context, credential Credential) (Grant, error) {
	if provider.options.Verifier == nil {
		return Grant{}, ErrFederatedUnsupported
	}
	identity, err := provider.options.Verifier.VerifyCredential(ctx, credential)
	if err != nil {
		return Grant{}, &model.AuthError{Op: "signInWithCredential", Message: MessageInvalidCredential, Err: err}
	}
	if identity.Email == "" {
		return Grant{}, &model.AuthError{Op: "signInWithCredential", Message: MessageInvalidEmail}
	}

	provider.mu.Lock()
	defer provider.mu.Unlock()

	accounts, err := provider.loadAccountsLocked(ctx)
	if err != nil {
		return Grant{}, err
	}
	key := normalizeEmail(identity.Email)
	account, ok := accounts[key]
	if !ok {
		account = localAccount{
			UID:         uuid.NewString(),
			Email:       identity.Email,
			DisplayName: identity.DisplayName,
			Provider:    credential.ProviderID,
			CreatedAt:   provider.options.Now().UTC(),
		}
		accounts[key] = account
		if err := provider.saveAccountsLocked(ctx, accounts); err != nil {
			return Grant{}, err
		}
	}
	return provider.grantLocked(ctx, account)
}

// Refresh validates a token issued by this provider and rotates it.
func (provider *LocalProvider) Refresh(ctx context.Context, refreshToken string) (Grant, error) {
	provider.mu.Lock()
	defer provider.mu.Unlock()

	secret, err := provider.secretLocked(ctx)
	if err != nil {
		return Grant{}, err
	}
	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(refreshToken, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(localIssuer),
		jwt.WithTimeFunc(provider.options.Now),
	)
	if err != nil {
		return Grant{}, &model.AuthError{Op: "refresh", Message: MessageSessionExpired, Err: err}
	}

	accounts, err := provider.loadAccountsLocked(ctx)
	if err != nil {
		return Grant{}, err
	}
	for _, account := range accounts {
		if account.UID == claims.Subject {
			return provider.grantLocked(ctx, account)
		}
	}
	return Grant{}, &model.AuthError{Op: "refresh", Message: MessageSessionExpired}
}

// SignOut is a no-op: tokens are stateless and the manager forgets them.
func (provider *LocalProvider) SignOut(ctx context.Context) error {
	return nil
}

func (provider *LocalProvider) SupportsFederated() bool {
	return provider.options.Verifier != nil
}

func (provider *LocalProvider) grantLocked(ctx context.Context, account localAccount) (Grant, error) {
	secret, err := provider.secretLocked(ctx)
	if err != nil {
		return Grant{}, err
	}
	now := provider.options.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    localIssuer,
		Subject:   account.UID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(provider.options.TokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return Grant{}, fmt.Errorf("sign token: %w", err)
	}
	return Grant{User: account.user(), RefreshToken: token}, nil
}

func (provider *LocalProvider) secretLocked(ctx context.Context) ([]byte, error) {
	if provider.secret != nil {
		return provider.secret, nil
	}
	encoded, ok, err := provider.store.Get(ctx, TokenSecretKey)
	if err != nil {
		return nil, err
	}
	if ok {
		secret, err := base64.StdEncoding.DecodeString(encoded)
		if err == nil && len(secret) >= 32 {
			provider.secret = secret
			return secret, nil
		}
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate token secret: %w", err)
	}
	if err := provider.store.Set(ctx, TokenSecretKey, base64.StdEncoding.EncodeToString(secret)); err != nil {
		return nil, err
	}
	provider.secret = secret
	return secret, nil
}

func (provider *LocalProvider) loadAccountsLocked(ctx context.Context) (map[string]localAccount, error) {
	raw, ok, err := provider.store.Get(ctx, AccountsKey)
	if err != nil {
		return nil, err
	}
	accounts := make(map[string]localAccount)
	if !ok || raw == "" {
		return accounts, nil
	}
	if err := json.Unmarshal([]byte(raw), &accounts); err != nil {
		return nil, &model.StorageError{Op: "decode", Key: AccountsKey, Err: err}
	}
	return accounts, nil
}

func (provider *LocalProvider) saveAccountsLocked(ctx context.Context, accounts map[string]localAccount) error {
	data, err := json.Marshal(accounts)
	if err != nil {
		return &model.StorageError{Op: "encode", Key: AccountsKey, Err: err}
	}
	return provider.store.Set(ctx, AccountsKey, string(data))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ Provider = (*LocalProvider)(nil)
