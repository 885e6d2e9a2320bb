package session

import (
	"net/http"
	"strings"
	"time"
)

// Transport carries the session id between client and server.
type Transport interface {
	GetID(r *http.Request) (string, error)
	SetID(w http.ResponseWriter, id string, ttl time.Duration)
	ClearID(w http.ResponseWriter)
}

// CookieTransport stores the id in an HttpOnly, SameSite=Lax cookie.
type CookieTransport struct {
	name   string
	secure bool
}

var _ Transport = (*CookieTransport)(nil)

func NewCookieTransport(name string, secure bool) *CookieTransport {
	return &CookieTransport{name: name, secure: secure}
}

func (t *CookieTransport) GetID(r *http.Request) (string, error) {
	c, err := r.Cookie(t.name)
	if err != nil || c.Value == "" {
		return "", ErrSessionNotFound
	}
	return c.Value, nil
}

func (t *CookieTransport) SetID(w http.ResponseWriter, id string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     t.name,
		Value:    id,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (t *CookieTransport) ClearID(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     t.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// HeaderTransport reads and writes the id in a request/response header,
// for API clients that do not keep cookies.
type HeaderTransport struct {
	header string
}

var _ Transport = (*HeaderTransport)(nil)

func NewHeaderTransport(header string) *HeaderTransport {
	return &HeaderTransport{header: header}
}

func (t *HeaderTransport) GetID(r *http.Request) (string, error) {
	v := strings.TrimSpace(strings.TrimPrefix(r.Header.Get(t.header), "Bearer "))
	if v == "" {
		return "", ErrSessionNotFound
	}
	return v, nil
}

func (t *HeaderTransport) SetID(w http.ResponseWriter, id string, _ time.Duration) {
	w.Header().Set(t.header, id)
}

func (t *HeaderTransport) ClearID(w http.ResponseWriter) {
	w.Header().Del(t.header)
}
