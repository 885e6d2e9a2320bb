// Package auth implements the Google sign-in flow with a CSRF state bound to
// the browser session.
//
// A Flow drives one session through the login states:
//
//	Idle -> AwaitingCallback -> Authenticated
//	Idle -> AwaitingCallback -> Failed -> Idle
//
// Begin issues a fresh random state, stores it in the session and returns the
// provider authorization URL. Complete validates the callback parameters,
// exchanges the code for an access token, fetches the profile and records the
// identity through the IdentityStore before marking the session authenticated.
//
// Provider specifics live behind ProviderAdapter. NewGoogleAdapter wires
// golang.org/x/oauth2 with the Google endpoints:
//
//	flow := auth.NewFlow(
//		auth.NewGoogleAdapter(cfg.Google),
//		directory,
//		auth.WithLogger(log),
//	)
//
//	url, err := flow.Begin(ctx, sess)
//	// redirect the browser to url
//
//	id, err := flow.Complete(ctx, sess, r.URL.Query().Get("code"), r.URL.Query().Get("state"))
//	if id == nil && err == nil {
//		// not a callback request
//	}
package auth
