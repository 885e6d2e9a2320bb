package token

import (
	"net/url"
	"strings"
)

// Query parameter names of the remember-me channel.
const (
	ParamEmail     = "u"
	ParamSignature = "t"
)

// RememberToken is a signed capability allowing silent re-authentication of Email.
type RememberToken struct {
	Email     string
	Signature string
}

// Query encodes the token as u/t query parameters.
func (rt RememberToken) Query() url.Values {
	return url.Values{
		ParamEmail:     []string{rt.Email},
		ParamSignature: []string{rt.Signature},
	}
}

// Remember mints a remember token for email.
func (s *Signer) Remember(email string) RememberToken {
	return RememberToken{Email: email, Signature: s.Sign(email)}
}

// VerifyRemember checks the token signature against its email.
func (s *Signer) VerifyRemember(rt RememberToken) bool {
	if rt.Email == "" {
		return false
	}
	return s.Verify(rt.Email, rt.Signature)
}

// RememberFromQuery extracts a token from u/t parameters.
// It returns false when either parameter is missing or blank.
func RememberFromQuery(q url.Values) (RememberToken, bool) {
	email := strings.TrimSpace(q.Get(ParamEmail))
	sig := strings.TrimSpace(q.Get(ParamSignature))
	if email == "" || sig == "" {
		return RememberToken{}, false
	}
	return RememberToken{Email: email, Signature: sig}, true
}

// StripRemember removes the remember parameters from q in place.
func StripRemember(q url.Values) {
	q.Del(ParamEmail)
	q.Del(ParamSignature)
}
