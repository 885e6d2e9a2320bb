package auth

import (
	"fmt"

	"github.com/dmitrymomot/regdesk/pkg/session"
)

// LoginState is the position of a session in the sign-in flow.
type LoginState string

const (
	StateIdle             LoginState = "idle"
	StateAwaitingCallback LoginState = "awaiting_callback"
	StateAuthenticated    LoginState = "authenticated"
	StateFailed           LoginState = "failed"
)

// loginTransitions lists the allowed targets per source state.
// AwaitingCallback is reachable from every state: a new Begin restarts the flow.
var loginTransitions = map[LoginState][]LoginState{
	StateIdle:             {StateAwaitingCallback},
	StateAwaitingCallback: {StateAwaitingCallback, StateAuthenticated, StateFailed, StateIdle},
	StateAuthenticated:    {StateAwaitingCallback, StateIdle},
	StateFailed:           {StateAwaitingCallback, StateIdle},
}

// CanTransition reports whether from -> to is allowed.
func CanTransition(from, to LoginState) bool {
	for _, s := range loginTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// StateOf returns the login state recorded in s. Unknown or empty values read as Idle.
func StateOf(s *session.Session) LoginState {
	if s == nil {
		return StateIdle
	}
	st := LoginState(s.LoginState)
	if _, ok := loginTransitions[st]; !ok {
		if s.IsAuthenticated() {
			return StateAuthenticated
		}
		return StateIdle
	}
	return st
}

func transition(s *session.Session, to LoginState) error {
	from := StateOf(s)
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	s.LoginState = string(to)
	return nil
}

// Restore marks s authenticated as id without a provider round trip.
// A login attempt in flight is abandoned.
func Restore(s *session.Session, id session.Identity) error {
	if s == nil {
		return ErrNilSession
	}
	s.Authenticate(id)
	s.LoginState = string(StateAuthenticated)
	return nil
}
