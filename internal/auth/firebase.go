package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fittrack/internal/core/model"
)

const (
	defaultIdentityEndpoint = "https://identitytoolkit.googleapis.com/v1"
	defaultTokenEndpoint    = "https://securetoken.googleapis.com/v1"
)

// ErrMissingAPIKey indicates the Firebase provider was configured without an API key.
var ErrMissingAPIKey = errors.New("firebase api key is empty")

// FirebaseOptions configures FirebaseProvider. Endpoints default to Google's.
type FirebaseOptions struct {
	APIKey           string
	HTTPClient       *http.Client
	IdentityEndpoint string
	TokenEndpoint    string
	// RequestURI is sent with federated sign-ins as the continue URI.
	RequestURI string
}

// FirebaseProvider talks to the Firebase Identity Toolkit REST API.
type FirebaseProvider struct {
	options FirebaseOptions
	client  *http.Client
}

// NewFirebaseProvider validates options and fills defaults.
func NewFirebaseProvider(options FirebaseOptions) (*FirebaseProvider, error) {
	if strings.TrimSpace(options.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if options.IdentityEndpoint == "" {
		options.IdentityEndpoint = defaultIdentityEndpoint
	}
	if options.TokenEndpoint == "" {
		options.TokenEndpoint = defaultTokenEndpoint
	}
	if options.RequestURI == "" {
		options.RequestURI = "http://localhost"
	}
	client := options.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &FirebaseProvider{options: options, client: client}, nil
}

type identityResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ProviderID   string `json:"providerId"`
}

func (response identityResponse) grant(providerID string) Grant {
	if response.ProviderID != "" {
		providerID = response.ProviderID
	}
	return Grant{
		User: model.User{
			UID:         response.LocalID,
			Email:       response.Email,
			DisplayName: response.DisplayName,
			Provider:    providerID,
		},
		RefreshToken: response.RefreshToken,
	}
}

func (provider *FirebaseProvider) SignInWithPassword(ctx context.Context, email, password string) (Grant, error) {
	var response identityResponse
	err := provider.postJSON(ctx, "signIn", provider.identityURL("accounts:signInWithPassword"), map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &response)
	if err != nil {
		return Grant{}, err
	}
	return response.grant(ProviderLocal), nil
}

func (provider *FirebaseProvider) CreateAccount(ctx context.Context, email, password string) (Grant, error) {
	var response identityResponse
	err := provider.postJSON(ctx, "createAccount", provider.identityURL("accounts:signUp"), map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &response)
	if err != nil {
		return Grant{}, err
	}
	return response.grant(ProviderLocal), nil
}

func (provider *FirebaseProvider) SignInWithCredential(ctx context.Context, credential Credential) (Grant, error) {
	providerID := credential.ProviderID
	if providerID == "" {
		providerID = ProviderGoogle
	}
	postBody := url.Values{"providerId": {providerID}}
	if credential.IDToken != "" {
		postBody.Set("id_token", credential.IDToken)
	}
	if credential.AccessToken != "" {
		postBody.Set("access_token", credential.AccessToken)
	}

	var response identityResponse
	err := provider.postJSON(ctx, "signInWithCredential", provider.identityURL("accounts:signInWithIdp"), map[string]any{
		"postBody":            postBody.Encode(),
		"requestUri":          provider.options.RequestURI,
		"returnIdpCredential": true,
		"returnSecureToken":   true,
	}, &response)
	if err != nil {
		return Grant{}, err
	}
	return response.grant(providerID), nil
}

// Refresh exchanges the refresh token and looks the user up with the new id token.
func (provider *FirebaseProvider) Refresh(ctx context.Context, refreshToken string) (Grant, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, provider.tokenURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return Grant{}, fmt.Errorf("build refresh request: %w", err)
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tokens struct {
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
		UserID       string `json:"user_id"`
	}
	if err := provider.do(request, "refresh", &tokens); err != nil {
		return Grant{}, err
	}

	var lookup struct {
		Users []struct {
			LocalID          string `json:"localId"`
			Email            string `json:"email"`
			DisplayName      string `json:"displayName"`
			ProviderUserInfo []struct {
				ProviderID string `json:"providerId"`
			} `json:"providerUserInfo"`
		} `json:"users"`
	}
	err = provider.postJSON(ctx, "refresh", provider.identityURL("accounts:lookup"), map[string]any{
		"idToken": tokens.IDToken,
	}, &lookup)
	if err != nil {
		return Grant{}, err
	}
	if len(lookup.Users) == 0 {
		return Grant{}, &model.AuthError{Op: "refresh", Message: firebaseMessage("USER_NOT_FOUND")}
	}

	found := lookup.Users[0]
	providerID := ProviderLocal
	if len(found.ProviderUserInfo) > 0 {
		providerID = found.ProviderUserInfo[0].ProviderID
	}
	return Grant{
		User: model.User{
			UID:         found.LocalID,
			Email:       found.Email,
			DisplayName: found.DisplayName,
			Provider:    providerID,
		},
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// SignOut has nothing to revoke server side; the manager drops the cached token.
func (provider *FirebaseProvider) SignOut(ctx context.Context) error {
	return nil
}

func (provider *FirebaseProvider) SupportsFederated() bool {
	return true
}

func (provider *FirebaseProvider) identityURL(method string) string {
	return provider.options.IdentityEndpoint + "/" + method + "?key=" + url.QueryEscape(provider.options.APIKey)
}

func (provider *FirebaseProvider) tokenURL() string {
	return provider.options.TokenEndpoint + "/token?key=" + url.QueryEscape(provider.options.APIKey)
}

func (provider *FirebaseProvider) postJSON(ctx context.Context, op, endpoint string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", op, err)
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	request.Header.Set("Content-Type", "application/json")
	return provider.do(request, op, out)
}

func (provider *FirebaseProvider) do(request *http.Request, op string, out any) error {
	response, err := provider.client.Do(request)
	if err != nil {
		return &model.AuthError{Op: op, Message: firebaseMessage("NETWORK_REQUEST_FAILED"), Err: err}
	}
	defer response.Body.Close()

	data, err := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if err != nil {
		return &model.AuthError{Op: op, Message: firebaseMessage("NETWORK_REQUEST_FAILED"), Err: err}
	}
	if response.StatusCode != http.StatusOK {
		return decodeFirebaseError(op, response.StatusCode, data)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}

func decodeFirebaseError(op string, status int, data []byte) error {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	code := ""
	if err := json.Unmarshal(data, &envelope); err == nil {
		code = envelope.Error.Message
	}
	if code == "" {
		code = fmt.Sprintf("HTTP_%d", status)
	}
	return &model.AuthError{
		Op:      op,
		Message: firebaseMessage(code),
		Err:     fmt.Errorf("firebase %s: status %d: %s", op, status, code),
	}
}

var firebaseCodes = map[string]string{
	"EMAIL_EXISTS":                "email-already-in-use",
	"EMAIL_NOT_FOUND":             "user-not-found",
	"INVALID_PASSWORD":            "wrong-password",
	"INVALID_LOGIN_CREDENTIALS":   "invalid-credential",
	"INVALID_IDP_RESPONSE":        "invalid-credential",
	"INVALID_EMAIL":               "invalid-email",
	"MISSING_PASSWORD":            "missing-password",
	"WEAK_PASSWORD":               "weak-password",
	"USER_DISABLED":               "user-disabled",
	"USER_NOT_FOUND":              "user-not-found",
	"TOO_MANY_ATTEMPTS_TRY_LATER": "too-many-requests",
	"TOKEN_EXPIRED":               "user-token-expired",
	"INVALID_REFRESH_TOKEN":       "invalid-user-token",
	"INVALID_GRANT_TYPE":          "invalid-user-token",
	"OPERATION_NOT_ALLOWED":       "operation-not-allowed",
	"NETWORK_REQUEST_FAILED":      "network-request-failed",
}

// firebaseMessage renders a REST error code the way the Firebase SDKs do,
// e.g. "Firebase: Error (auth/invalid-credential).".
func firebaseMessage(code string) string {
	// Some codes carry a detail suffix: "WEAK_PASSWORD : Password should be at least 6 characters".
	if head, _, found := strings.Cut(code, " : "); found {
		code = head
	}
	code = strings.TrimSpace(code)
	name, ok := firebaseCodes[code]
	if !ok {
		if strings.HasPrefix(code, "API key not valid") {
			name = "api-key-not-valid"
		} else {
			name = strings.ToLower(strings.ReplaceAll(code, "_", "-"))
		}
	}
	return fmt.Sprintf("Firebase: Error (auth/%s).", name)
}

var _ Provider = (*FirebaseProvider)(nil)
