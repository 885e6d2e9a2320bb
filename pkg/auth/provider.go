package auth

import "context"

// Profile is the normalized user profile returned by a provider.
type Profile struct {
	Email         string
	Name          string
	Picture       string
	EmailVerified bool
}

// ProviderAdapter hides provider specific endpoints and payloads from Flow.
type ProviderAdapter interface {
	// AuthURL builds the authorization URL carrying state.
	AuthURL(state string) string
	// Exchange trades an authorization code for an access token.
	Exchange(ctx context.Context, code string) (string, error)
	// UserInfo fetches the profile of the token owner.
	UserInfo(ctx context.Context, accessToken string) (Profile, error)
}

// IdentityStore records identities after a successful login.
type IdentityStore interface {
	Upsert(ctx context.Context, email, name, picture string) error
}
