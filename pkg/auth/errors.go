package auth

import "errors"

var (
	ErrStateMismatch       = errors.New("oauth state mismatch")
	ErrTokenExchangeFailed = errors.New("oauth token exchange failed")
	ErrUserInfoFailed      = errors.New("oauth userinfo request failed")
	ErrInvalidTransition   = errors.New("invalid login state transition")
	ErrStateGeneration     = errors.New("failed to generate oauth state")
	ErrMissingEmail        = errors.New("provider profile has no email")
	ErrUnverifiedEmail     = errors.New("email not verified by provider")
	ErrIdentityStore       = errors.New("failed to record identity")
	ErrNilSession          = errors.New("session is required")
)
