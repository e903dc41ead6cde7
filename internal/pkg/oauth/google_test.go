package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestGoogleService_RedirectURL(t *testing.T) {
	svc := NewGoogleService("client-id", "secret", "http://localhost:8080/api/v1/auth/oauth/callback/google", nil)

	state, err := svc.GenerateState()
	require.NoError(t, err)
	require.NotEmpty(t, state)

	u, err := url.Parse(svc.RedirectURL(state))
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, state, u.Query().Get("state"))
	assert.Equal(t, "client-id", u.Query().Get("client_id"))
}

func TestGoogleService_Exchange(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "google-access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer google-access-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(GoogleInformation{GoogleID: "g-1", Email: "hr@example.com", VerifiedEmail: true})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	svc := &googleService{
		config: &oauth2.Config{
			ClientID:     "client-id",
			ClientSecret: "secret",
			Endpoint:     oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"},
		},
		userInfoURL: srv.URL + "/userinfo",
	}

	info, err := svc.Exchange(context.Background(), "auth-code")

	require.NoError(t, err)
	assert.Equal(t, "g-1", info.GoogleID)
	assert.Equal(t, "hr@example.com", info.Email)
	assert.True(t, info.VerifiedEmail)
}
