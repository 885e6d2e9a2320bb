// Package clientip resolves the caller address of an HTTP request.
//
// Forwarding headers are only honoured when configured, since any client can
// send them. The resolved address is stored in the request context by
// Resolver.Middleware and read back with FromContext; the rate limiter keys
// login attempts on it.
//
//	res := clientip.NewResolver(cfg.HTTP.TrustedIPHeaders...)
//	r.Use(res.Middleware)
package clientip
