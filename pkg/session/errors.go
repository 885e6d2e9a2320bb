package session

import "errors"

var (
	ErrSessionNotFound = errors.New("session: not found")
	ErrSessionExpired  = errors.New("session: expired")
	ErrInvalidSession  = errors.New("session: invalid")
	ErrIDGeneration    = errors.New("session: id generation failed")
)
