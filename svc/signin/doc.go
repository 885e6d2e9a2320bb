// Package signin decides whether a request is authenticated and how.
//
// Resolve checks, in order, the session itself, a remember token in the
// query string (u and t parameters) and an OAuth callback (code and state).
// A remember token is honoured only for an email already in the user
// directory and never contacts the identity provider. A successful callback
// returns a fresh remember token for the caller to place in the URL.
//
// Remember tokens carry no expiry: a token stays valid until the signing
// key is rotated.
package signin
