// Package token provides deterministic, signed capability tokens for
// remember-me links.
//
// A token is the HMAC-SHA256 of a subject (an email address) under an
// application secret, encoded with unpadded base64url so it can travel in a
// query string without escaping.
//
// Tokens carry no expiry and no nonce: the same (secret, subject) pair always
// produces the same token, which lets a remember link be regenerated
// idempotently. Rotating the secret is the only way to revoke every issued
// token at once.
//
// # Usage
//
//	import "github.com/dmitrymomot/regdesk/pkg/token"
//
//	signer, err := token.NewSigner(cfg.SigningKey)
//	if err != nil {
//	    log.Fatal(err) // missing secret is a startup error
//	}
//
//	rt := signer.Remember("ada@example.com")
//	link := "/profile?" + rt.Query().Encode()
//
//	// later, on an incoming request
//	if rt, ok := token.RememberFromQuery(r.URL.Query()); ok && signer.VerifyRemember(rt) {
//	    // silently re-authenticate rt.Email
//	}
//
// Verification compares in constant time and fails closed: malformed, empty
// or truncated tokens simply return false.
package token
