package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fittrack/internal/auth"
	"fittrack/internal/core/model"
)

func newFirebase(t *testing.T, handler http.HandlerFunc) *auth.FirebaseProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider, err := auth.NewFirebaseProvider(auth.FirebaseOptions{
		APIKey:           "test-key",
		HTTPClient:       server.Client(),
		IdentityEndpoint: server.URL + "/v1",
		TokenEndpoint:    server.URL + "/token-api",
	})
	require.NoError(t, err)
	return provider
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func firebaseError(message string) map[string]any {
	return map[string]any{"error": map[string]any{"code": 400, "message": message}}
}

func TestFirebaseRequiresAPIKey(t *testing.T) {
	_, err := auth.NewFirebaseProvider(auth.FirebaseOptions{})
	assert.ErrorIs(t, err, auth.ErrMissingAPIKey)
}

func TestFirebaseSignInWithPassword(t *testing.T) {
	provider := newFirebase(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/accounts:signInWithPassword", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice@example.com", body["email"])
		assert.Equal(t, true, body["returnSecureToken"])

		writeJSON(w, http.StatusOK, map[string]any{
			"localId":      "uid-1",
			"email":        "alice@example.com",
			"idToken":      "id-1",
			"refreshToken": "refresh-1",
		})
	})

	grant, err := provider.SignInWithPassword(context.Background(), "alice@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, model.User{UID: "uid-1", Email: "alice@example.com", Provider: auth.ProviderLocal}, grant.User)
	assert.Equal(t, "refresh-1", grant.RefreshToken)
}

func TestFirebaseErrorMessages(t *testing.T) {
	tests := []struct {
		code    string
		message string
	}{
		{code: "INVALID_LOGIN_CREDENTIALS", message: "Firebase: Error (auth/invalid-credential)."},
		{code: "EMAIL_EXISTS", message: "Firebase: Error (auth/email-already-in-use)."},
		{code: "WEAK_PASSWORD : Password should be at least 6 characters", message: "Firebase: Error (auth/weak-password)."},
		{code: "TOO_MANY_ATTEMPTS_TRY_LATER", message: "Firebase: Error (auth/too-many-requests)."},
		{code: "SOMETHING_NEW", message: "Firebase: Error (auth/something-new)."},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			provider := newFirebase(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusBadRequest, firebaseError(tt.code))
			})

			_, err := provider.CreateAccount(context.Background(), "alice@example.com", "hunter22")
			var authErr *model.AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, "createAccount", authErr.Op)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestFirebaseNonJSONFailure(t *testing.T) {
	provider := newFirebase(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	_, err := provider.SignInWithPassword(context.Background(), "alice@example.com", "hunter22")
	assert.EqualError(t, err, "Firebase: Error (auth/http-502).")
}

func TestFirebaseSignInWithCredential(t *testing.T) {
	provider := newFirebase(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/accounts:signInWithIdp", r.URL.Path)

		var body struct {
			PostBody   string `json:"postBody"`
			RequestURI string `json:"requestUri"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		form, err := url.ParseQuery(body.PostBody)
		require.NoError(t, err)
		assert.Equal(t, "google-id", form.Get("id_token"))
		assert.Equal(t, auth.ProviderGoogle, form.Get("providerId"))
		assert.Equal(t, "http://localhost", body.RequestURI)

		writeJSON(w, http.StatusOK, map[string]any{
			"localId":      "uid-g",
			"email":        "carol@example.com",
			"displayName":  "Carol",
			"refreshToken": "refresh-g",
			"providerId":   auth.ProviderGoogle,
		})
	})
	assert.True(t, provider.SupportsFederated())

	grant, err := provider.SignInWithCredential(context.Background(), auth.Credential{IDToken: "google-id"})
	require.NoError(t, err)
	assert.Equal(t, "Carol", grant.User.Label())
	assert.Equal(t, auth.ProviderGoogle, grant.User.Provider)
}

func TestFirebaseRefresh(t *testing.T) {
	provider := newFirebase(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token-api/token":
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
			if r.PostForm.Get("refresh_token") != "refresh-1" {
				writeJSON(w, http.StatusBadRequest, firebaseError("INVALID_REFRESH_TOKEN"))
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"id_token":      "id-2",
				"refresh_token": "refresh-2",
				"user_id":       "uid-1",
			})
		case "/v1/accounts:lookup":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "id-2", body["idToken"])
			writeJSON(w, http.StatusOK, map[string]any{
				"users": []map[string]any{{
					"localId":          "uid-1",
					"email":            "alice@example.com",
					"providerUserInfo": []map[string]any{{"providerId": "password"}},
				}},
			})
		default:
			http.NotFound(w, r)
		}
	})

	grant, err := provider.Refresh(context.Background(), "refresh-1")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", grant.User.UID)
	assert.Equal(t, "refresh-2", grant.RefreshToken)

	_, err = provider.Refresh(context.Background(), "stale")
	assert.EqualError(t, err, "Firebase: Error (auth/invalid-user-token).")
}

func TestFirebaseNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	provider, err := auth.NewFirebaseProvider(auth.FirebaseOptions{APIKey: "k", IdentityEndpoint: endpoint})
	require.NoError(t, err)

	_, err = provider.SignInWithPassword(context.Background(), "alice@example.com", "hunter22")
	var authErr *model.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Firebase: Error (auth/network-request-failed).", authErr.Message)
}
