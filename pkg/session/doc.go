// Package session keeps per-browser state between requests: the signed-in
// identity, the pending OAuth CSRF state and the login flow state.
//
// A Session is a plain value. The auth flow and the sign-in resolver mutate
// it, and the HTTP layer persists it through the Manager:
//
//	mgr := session.NewManager(session.NewMemoryStore(), session.WithConfig(cfg))
//	r.Use(mgr.Middleware)
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//		s := session.MustFromContext(r.Context())
//		s.Authenticate(identity)
//		_ = mgr.Save(r.Context(), w, s)
//	}
//
// Session ids are 256-bit random values carried in an HttpOnly cookie (or a
// header for API clients). Stores are pluggable; MemoryStore ships here and a
// Redis store lives in pkg/redis.
package session
