package signin

import "errors"

var (
	ErrNilSession     = errors.New("signin: nil session")
	ErrLoginCancelled = errors.New("signin: login cancelled at provider")
	ErrDirectory      = errors.New("signin: user directory unavailable")
)
