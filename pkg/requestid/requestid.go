// Package requestid tags every request with a correlation id.
//
// A caller-supplied X-Request-ID is reused when it is short and made of
// [A-Za-z0-9_-]; anything else is replaced with a fresh UUID. The id is
// echoed in the response and stored in the context, where
// logger.RequestIDExtractor(requestid.FromContext) picks it up.
package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const (
	Header = "X-Request-ID"
	maxLen = 128
)

type contextKey struct{}

func WithContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if !valid(id) {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), id)))
	})
}

func valid(id string) bool {
	if id == "" || len(id) > maxLen {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
