package handler

// RequireAuth rejects requests whose session carries no identity.
func RequireAuth[R any](next HandlerFunc[R]) HandlerFunc[R] {
	return func(ctx Context, req R) Response {
		if !ctx.Session().IsAuthenticated() {
			return JSONError(ErrUnauthorized.WithMessage("Sign in required"))
		}
		return next(ctx, req)
	}
}
