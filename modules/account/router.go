package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Mountable interface {
	Handle() http.Handler
}

// RouterOptions selects the services to mount. Nil services are skipped.
type RouterOptions struct {
	Auth    Mountable
	Profile Mountable
}

// Router mounts the account services:
//
//	r.Mount("/", account.Router(account.RouterOptions{
//		Auth:    account.NewAuthService(signins, sessions),
//		Profile: account.NewProfileService(users, storage, sessions),
//	}))
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()
	if opts.Auth != nil {
		r.Mount("/auth", opts.Auth.Handle())
	}
	if opts.Profile != nil {
		r.Mount("/profile", opts.Profile.Handle())
	}
	return r
}
