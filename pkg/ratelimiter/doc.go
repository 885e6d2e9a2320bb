// Package ratelimiter throttles requests with a fixed window per key.
//
// The Limiter counts attempts through a Store: MemoryStore for a single
// replica, or the Redis store in pkg/redis when several replicas share a
// limit. Middleware wraps the OAuth entry points and keys on the caller IP:
//
//	lim, _ := ratelimiter.New(ratelimiter.NewMemoryStore(), cfg.RateLimit)
//	r.With(ratelimiter.Middleware(lim, func(r *http.Request) string {
//		return clientip.FromContext(r.Context())
//	})).Mount("/auth", auth.Handle())
package ratelimiter
