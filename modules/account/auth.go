package account

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/regdesk/handler"
	"github.com/dmitrymomot/regdesk/pkg/logger"
	"github.com/dmitrymomot/regdesk/pkg/session"
	"github.com/dmitrymomot/regdesk/pkg/token"
	"github.com/dmitrymomot/regdesk/svc/signin"
)

var errNoSession = errors.New("account: no session in request context")

// SignIn is implemented by *signin.Manager.
type SignIn interface {
	Resolve(ctx context.Context, s *session.Session, q url.Values) (signin.Result, error)
	BeginLogin(ctx context.Context, s *session.Session) (string, error)
	Logout(ctx context.Context, s *session.Session) error
}

// Sessions is implemented by *session.Manager.
type Sessions interface {
	Save(ctx context.Context, w http.ResponseWriter, s *session.Session) error
	Rotate(ctx context.Context, w http.ResponseWriter, s *session.Session) error
}

// SessionResponse describes how the request is authenticated.
type SessionResponse struct {
	Authenticated bool              `json:"authenticated"`
	Source        signin.Source     `json:"source"`
	Identity      *session.Identity `json:"identity,omitempty"`
	Remember      map[string]string `json:"remember,omitempty"`
}

type AuthService struct {
	signins      SignIn
	sessions     Sessions
	redirectURL  string
	errorHandler handler.ErrorHandler
	limiter      func(http.Handler) http.Handler
	logger       *slog.Logger
}

type AuthOption func(*AuthService)

// WithRedirectURL sets where the callback sends the browser. Defaults to "/".
func WithRedirectURL(u string) AuthOption {
	return func(a *AuthService) {
		if u != "" {
			a.redirectURL = u
		}
	}
}

func WithAuthErrorHandler(h handler.ErrorHandler) AuthOption {
	return func(a *AuthService) {
		if h != nil {
			a.errorHandler = h
		}
	}
}

// WithLoginLimiter guards the login and callback routes with mw.
func WithLoginLimiter(mw func(http.Handler) http.Handler) AuthOption {
	return func(a *AuthService) {
		a.limiter = mw
	}
}

func WithAuthLogger(l *slog.Logger) AuthOption {
	return func(a *AuthService) {
		if l != nil {
			a.logger = l
		}
	}
}

func NewAuthService(signins SignIn, sessions Sessions, opts ...AuthOption) *AuthService {
	a := &AuthService{
		signins:     signins,
		sessions:    sessions,
		redirectURL: "/",
		logger:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.errorHandler == nil {
		a.errorHandler = handler.NewErrorHandler(a.logger)
	}
	a.logger = a.logger.With(logger.Component("account.auth"))
	return a
}

func (a *AuthService) Handle() http.Handler {
	r := chi.NewRouter()
	eh := handler.WithErrorHandler(a.errorHandler)
	r.Group(func(r chi.Router) {
		if a.limiter != nil {
			r.Use(a.limiter)
		}
		r.Get("/google/login", handler.Wrap(a.login, eh))
		r.Get("/google/callback", handler.Wrap(a.callback, eh))
	})
	r.Get("/session", handler.Wrap(a.current, eh))
	r.Post("/logout", handler.Wrap(a.logout, eh))
	return r
}

func (a *AuthService) login(ctx handler.Context, _ struct{}) handler.Response {
	s := ctx.Session()
	if s == nil {
		return handler.JSONError(errNoSession)
	}
	authURL, err := a.signins.BeginLogin(ctx, s)
	if err != nil {
		return handler.JSONError(httpError(err))
	}
	if err := a.sessions.Save(ctx, ctx.ResponseWriter(), s); err != nil {
		return handler.JSONError(err)
	}
	return handler.Redirect(authURL)
}

func (a *AuthService) callback(ctx handler.Context, _ struct{}) handler.Response {
	s := ctx.Session()
	if s == nil {
		return handler.JSONError(errNoSession)
	}

	res, err := a.signins.Resolve(ctx, s, ctx.Request().URL.Query())
	if err != nil {
		// Persist the failed attempt so the spent state cannot be replayed.
		if serr := a.sessions.Save(ctx, ctx.ResponseWriter(), s); serr != nil {
			a.logger.ErrorContext(ctx, "failed to save session", logger.Error(serr))
		}
		return handler.JSONError(httpError(err))
	}
	if err := a.persist(ctx, s, res); err != nil {
		return handler.JSONError(err)
	}
	return handler.Redirect(a.landingURL(res.Remember))
}

func (a *AuthService) current(ctx handler.Context, _ struct{}) handler.Response {
	s := ctx.Session()
	if s == nil {
		return handler.JSONError(errNoSession)
	}

	res, err := a.signins.Resolve(ctx, s, ctx.Request().URL.Query())
	if err != nil {
		return handler.JSONError(httpError(err))
	}
	if err := a.persist(ctx, s, res); err != nil {
		return handler.JSONError(err)
	}

	resp := SessionResponse{
		Authenticated: res.Authenticated(),
		Source:        res.Source,
		Identity:      res.Identity,
	}
	if res.Remember != nil {
		resp.Remember = map[string]string{
			token.ParamEmail:     res.Remember.Email,
			token.ParamSignature: res.Remember.Signature,
		}
	}
	return handler.JSON(resp)
}

func (a *AuthService) logout(ctx handler.Context, _ struct{}) handler.Response {
	s := ctx.Session()
	if s == nil {
		return handler.Empty()
	}
	if err := a.signins.Logout(ctx, s); err != nil {
		return handler.JSONError(err)
	}
	if err := a.sessions.Save(ctx, ctx.ResponseWriter(), s); err != nil {
		return handler.JSONError(err)
	}
	return handler.Empty()
}

// persist stores s after a sign-in. A fresh sign-in moves the session to a
// new id.
func (a *AuthService) persist(ctx handler.Context, s *session.Session, res signin.Result) error {
	switch res.Source {
	case signin.SourceCallback, signin.SourceRememberToken:
		return a.sessions.Rotate(ctx, ctx.ResponseWriter(), s)
	case signin.SourceSession:
		return nil
	default:
		return a.sessions.Save(ctx, ctx.ResponseWriter(), s)
	}
}

// landingURL is the redirect target with the remember params replaced.
func (a *AuthService) landingURL(rt *token.RememberToken) string {
	u, err := url.Parse(a.redirectURL)
	if err != nil {
		return "/"
	}
	q := u.Query()
	token.StripRemember(q)
	if rt != nil {
		for k, v := range rt.Query() {
			q[k] = v
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
