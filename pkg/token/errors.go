package token

import "errors"

var (
	ErrMissingSecret = errors.New("token: signing secret is not configured")
)
