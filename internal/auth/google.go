package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"fittrack/internal/core/model"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const (
	googleCallbackPath = "/callback"
	googleUserInfoURL  = "https://openidconnect.googleapis.com/v1/userinfo"
)

// Messages shown for Google sign-in failures.
const (
	MessageGoogleCancelled = "Google sign-in was cancelled."
	MessageGoogleFailed    = "Google sign-in failed. Please try again."
)

// ErrMissingClientID is returned when Google sign-in has no OAuth client configured.
var ErrMissingClientID = errors.New("google oauth client id is not configured")

// GoogleOptions configures the browser consent flow.
type GoogleOptions struct {
	ClientID     string
	ClientSecret string
	// OpenURL shows the consent page, usually in the system browser.
	OpenURL     func(*url.URL) error
	Endpoint    oauth2.Endpoint
	UserInfoURL string
	HTTPClient  *http.Client
	ListenAddr  string
}

// GoogleSignIn obtains Google credentials through a loopback redirect and
// verifies them for providers that keep their own accounts.
type GoogleSignIn struct {
	options GoogleOptions
}

type callbackResult struct {
	code string
	err  error
}

// NewGoogleSignIn validates options and fills defaults.
func NewGoogleSignIn(options GoogleOptions) (*GoogleSignIn, error) {
	if options.ClientID == "" {
		return nil, ErrMissingClientID
	}
	if options.OpenURL == nil {
		return nil, errors.New("google sign-in: no way to open the consent page")
	}
	if options.Endpoint.AuthURL == "" {
		options.Endpoint = endpoints.Google
	}
	if options.UserInfoURL == "" {
		options.UserInfoURL = googleUserInfoURL
	}
	if options.HTTPClient == nil {
		options.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if options.ListenAddr == "" {
		options.ListenAddr = "127.0.0.1:0"
	}
	return &GoogleSignIn{options: options}, nil
}

// Credential opens the consent page and waits for the redirect back to a
// local listener, then exchanges the code for tokens.
func (google *GoogleSignIn) Credential(ctx context.Context) (Credential, error) {
	listener, err := net.Listen("tcp", google.options.ListenAddr)
	if err != nil {
		return Credential{}, fmt.Errorf("google sign-in: listen: %w", err)
	}

	config := google.config("http://" + listener.Addr().String() + googleCallbackPath)
	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()

	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc(googleCallbackPath, func(writer http.ResponseWriter, request *http.Request) {
		result := readCallback(request.URL.Query(), state)
		if result.err != nil {
			http.Error(writer, "FitTrack sign-in failed. You can close this window.", http.StatusBadRequest)
		} else {
			_, _ = io.WriteString(writer, "Signed in to FitTrack. You can close this window.")
		}
		select {
		case results <- result:
		default:
		}
	})
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		_ = server.Serve(listener)
	}()
	defer server.Close()

	consent, err := url.Parse(config.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.S256ChallengeOption(verifier)))
	if err != nil {
		return Credential{}, fmt.Errorf("google sign-in: consent url: %w", err)
	}
	if err := google.options.OpenURL(consent); err != nil {
		return Credential{}, fmt.Errorf("google sign-in: open browser: %w", err)
	}

	var result callbackResult
	select {
	case <-ctx.Done():
		return Credential{}, ctx.Err()
	case result = <-results:
	}
	if result.err != nil {
		return Credential{}, &model.AuthError{Op: "google", Message: MessageGoogleCancelled, Err: result.err}
	}

	token, err := config.Exchange(google.clientContext(ctx), result.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return Credential{}, &model.AuthError{Op: "google", Message: MessageGoogleFailed, Err: err}
	}
	idToken, _ := token.Extra("id_token").(string)
	return Credential{ProviderID: ProviderGoogle, IDToken: idToken, AccessToken: token.AccessToken}, nil
}

// VerifyCredential resolves the Google account behind an access token.
func (google *GoogleSignIn) VerifyCredential(ctx context.Context, credential Credential) (model.User, error) {
	if credential.AccessToken == "" {
		return model.User{}, errors.New("google credential has no access token")
	}
	client := oauth2.NewClient(google.clientContext(ctx), oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: credential.AccessToken,
		TokenType:   "Bearer",
	}))

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, google.options.UserInfoURL, nil)
	if err != nil {
		return model.User{}, fmt.Errorf("google userinfo request: %w", err)
	}
	response, err := client.Do(request)
	if err != nil {
		return model.User{}, fmt.Errorf("google userinfo: %w", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return model.User{}, fmt.Errorf("google userinfo: status %d", response.StatusCode)
	}

	var info struct {
		Subject       string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := json.NewDecoder(response.Body).Decode(&info); err != nil {
		return model.User{}, fmt.Errorf("decode google userinfo: %w", err)
	}
	if !info.EmailVerified {
		return model.User{}, fmt.Errorf("google account %q has no verified email", info.Subject)
	}
	return model.User{UID: info.Subject, Email: info.Email, DisplayName: info.Name, Provider: ProviderGoogle}, nil
}

func (google *GoogleSignIn) config(redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     google.options.ClientID,
		ClientSecret: google.options.ClientSecret,
		Endpoint:     google.options.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       []string{"openid", "email", "profile"},
	}
}

func (google *GoogleSignIn) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, google.options.HTTPClient)
}

func readCallback(query url.Values, state string) callbackResult {
	switch {
	case query.Get("state") != state:
		return callbackResult{err: errors.New("state mismatch")}
	case query.Get("error") != "":
		return callbackResult{err: fmt.Errorf("consent denied: %s", query.Get("error"))}
	case query.Get("code") == "":
		return callbackResult{err: errors.New("missing authorization code")}
	}
	return callbackResult{code: query.Get("code")}
}
