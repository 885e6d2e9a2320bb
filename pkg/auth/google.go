package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleAdapter talks to Google's OAuth 2.0 and OpenID userinfo endpoints.
type GoogleAdapter struct {
	conf        *oauth2.Config
	httpClient  *http.Client
	userInfoURL string
}

// GoogleOption customizes a GoogleAdapter.
type GoogleOption func(*GoogleAdapter)

// WithEndpoint replaces the Google authorization and token endpoints.
func WithEndpoint(ep oauth2.Endpoint) GoogleOption {
	return func(a *GoogleAdapter) {
		a.conf.Endpoint = ep
	}
}

// WithHTTPClient sets the client used for the token exchange and userinfo calls.
func WithHTTPClient(c *http.Client) GoogleOption {
	return func(a *GoogleAdapter) {
		if c != nil {
			a.httpClient = c
		}
	}
}

// NewGoogleAdapter creates a Google provider adapter.
func NewGoogleAdapter(cfg GoogleOAuthConfig, opts ...GoogleOption) *GoogleAdapter {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{"openid", "email", "profile"}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	userInfoURL := cfg.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = DefaultUserInfoURL
	}

	a := &GoogleAdapter{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     google.Endpoint,
		},
		httpClient:  &http.Client{Timeout: timeout},
		userInfoURL: userInfoURL,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AuthURL builds the consent URL. Offline access and account selection are always requested.
func (a *GoogleAdapter) AuthURL(state string) string {
	return a.conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

// Exchange trades code for an access token.
func (a *GoogleAdapter) Exchange(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	tok, err := a.conf.Exchange(ctx, code)
	if err != nil {
		return "", errors.Join(ErrTokenExchangeFailed, err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrTokenExchangeFailed)
	}
	return tok.AccessToken, nil
}

// UserInfo fetches the OpenID profile for accessToken.
func (a *GoogleAdapter) UserInfo(ctx context.Context, accessToken string) (Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.userInfoURL, nil)
	if err != nil {
		return Profile{}, errors.Join(ErrUserInfoFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return Profile{}, errors.Join(ErrUserInfoFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Profile{}, fmt.Errorf("%w: google returned status %d", ErrUserInfoFailed, resp.StatusCode)
	}

	var u googleUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return Profile{}, errors.Join(ErrUserInfoFailed, err)
	}
	return Profile{
		Email:         u.Email,
		Name:          u.Name,
		Picture:       u.Picture,
		EmailVerified: u.EmailVerified,
	}, nil
}

type googleUser struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

var _ ProviderAdapter = (*GoogleAdapter)(nil)
