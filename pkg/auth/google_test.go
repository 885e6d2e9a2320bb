package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/regdesk/pkg/auth"
	"github.com/dmitrymomot/regdesk/pkg/session"
)

func googleConfig(userInfoURL string) auth.GoogleOAuthConfig {
	return auth.GoogleOAuthConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "https://regdesk.example/",
		UserInfoURL:  userInfoURL,
	}
}

func newGoogleServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access-123","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"sub":            "1234",
			"email":          "alice@example.com",
			"email_verified": true,
			"name":           "Alice",
			"picture":        "https://img/a.png",
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestAdapter(srv *httptest.Server) *auth.GoogleAdapter {
	return auth.NewGoogleAdapter(
		googleConfig(srv.URL+"/userinfo"),
		auth.WithEndpoint(oauth2.Endpoint{
			AuthURL:  srv.URL + "/auth",
			TokenURL: srv.URL + "/token",
		}),
		auth.WithHTTPClient(srv.Client()),
	)
}

func TestGoogleAdapter_AuthURL(t *testing.T) {
	t.Parallel()

	a := auth.NewGoogleAdapter(googleConfig(""))
	raw := a.AuthURL("state-xyz")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", u.Host)

	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "openid email profile", q.Get("scope"))
	assert.Equal(t, "https://regdesk.example/", q.Get("redirect_uri"))
	assert.Equal(t, "state-xyz", q.Get("state"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "select_account", q.Get("prompt"))
}

func TestGoogleAdapter_Exchange(t *testing.T) {
	t.Parallel()

	srv := newGoogleServer(t)
	a := newTestAdapter(srv)

	t.Run("valid code", func(t *testing.T) {
		t.Parallel()

		tok, err := a.Exchange(context.Background(), "good-code")
		require.NoError(t, err)
		assert.Equal(t, "access-123", tok)
	})

	t.Run("rejected code", func(t *testing.T) {
		t.Parallel()

		_, err := a.Exchange(context.Background(), "bad-code")
		require.ErrorIs(t, err, auth.ErrTokenExchangeFailed)
	})
}

func TestGoogleAdapter_UserInfo(t *testing.T) {
	t.Parallel()

	srv := newGoogleServer(t)
	a := newTestAdapter(srv)

	t.Run("profile", func(t *testing.T) {
		t.Parallel()

		p, err := a.UserInfo(context.Background(), "access-123")
		require.NoError(t, err)
		assert.Equal(t, auth.Profile{
			Email:         "alice@example.com",
			Name:          "Alice",
			Picture:       "https://img/a.png",
			EmailVerified: true,
		}, p)
	})

	t.Run("unauthorized", func(t *testing.T) {
		t.Parallel()

		_, err := a.UserInfo(context.Background(), "stale")
		require.ErrorIs(t, err, auth.ErrUserInfoFailed)
	})
}

type recordingStore struct {
	calls []string
}

func (s *recordingStore) Upsert(_ context.Context, email, _, _ string) error {
	s.calls = append(s.calls, email)
	return nil
}

func TestFlow_WithGoogleAdapter(t *testing.T) {
	t.Parallel()

	srv := newGoogleServer(t)
	store := &recordingStore{}
	flow := auth.NewFlow(newTestAdapter(srv), store)

	s := newAnonymous(t)
	authURL, err := flow.Begin(context.Background(), s)
	require.NoError(t, err)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.Equal(t, s.CSRFState, state)

	id, err := flow.Complete(context.Background(), s, "good-code", state)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", id.Email)
	assert.Equal(t, []string{"alice@example.com"}, store.calls)
	assert.Equal(t, auth.StateAuthenticated, auth.StateOf(s))
}

func newAnonymous(t *testing.T) *session.Session {
	t.Helper()
	s, err := session.New(time.Now(), time.Hour)
	require.NoError(t, err)
	return s
}
