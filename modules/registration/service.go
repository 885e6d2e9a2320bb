package registration

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/regdesk/binder"
	"github.com/dmitrymomot/regdesk/handler"
	"github.com/dmitrymomot/regdesk/pkg/logger"
	"github.com/dmitrymomot/regdesk/pkg/sanitizer"
	"github.com/dmitrymomot/regdesk/pkg/session"
	"github.com/dmitrymomot/regdesk/svc/directory"
	"github.com/dmitrymomot/regdesk/svc/ledger"
)

// Ledger is implemented by *ledger.Ledger.
type Ledger interface {
	Register(ctx context.Context, in ledger.Input) (*ledger.Registration, error)
	Update(ctx context.Context, email, id string, d ledger.Details) (*ledger.Registration, error)
	UpdateMatching(ctx context.Context, email string, original, d ledger.Details) (*ledger.Registration, error)
	ListByEmail(ctx context.Context, email string) ([]ledger.Registration, error)
	Latest(ctx context.Context, email string) (*ledger.Registration, error)
	Summary(ctx context.Context, email string) (ledger.Summary, error)
	Policy() ledger.Policy
	Fee() int
}

// Users is implemented by *directory.Directory.
type Users interface {
	Get(ctx context.Context, email string) (*directory.User, error)
}

// RegisterRequest is a submission. Name is optional and defaults to the
// directory name.
type RegisterRequest struct {
	Name string `json:"name"`
	ledger.Details
}

type UpdateRequest struct {
	ID string `path:"id" json:"-"`
	ledger.Details
}

type MatchRequest struct {
	Original ledger.Details `json:"original"`
	Changes  ledger.Details `json:"changes"`
}

// Prefill holds the registration form defaults.
type Prefill struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	RegistrationID string `json:"registration_id,omitempty"`
	ledger.Details
}

type Service struct {
	ledger       Ledger
	users        Users
	errorHandler handler.ErrorHandler
	logger       *slog.Logger
}

type Option func(*Service)

func WithErrorHandler(h handler.ErrorHandler) Option {
	return func(s *Service) {
		if h != nil {
			s.errorHandler = h
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(l Ledger, users Users, opts ...Option) *Service {
	s := &Service{ledger: l, users: users, logger: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	if s.errorHandler == nil {
		s.errorHandler = handler.NewErrorHandler(s.logger)
	}
	s.logger = s.logger.With(logger.Component("registration"))
	return s
}

func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	eh := handler.WithErrorHandler(s.errorHandler)
	body := handler.WithBinders(binder.JSON())

	r.Get("/", handler.Wrap(handler.RequireAuth(s.list), eh))
	r.Post("/", handler.Wrap(handler.RequireAuth(s.register), eh, body))
	r.Get("/prefill", handler.Wrap(handler.RequireAuth(s.prefill), eh))
	r.Get("/summary", handler.Wrap(handler.RequireAuth(s.summary), eh))
	r.Post("/match", handler.Wrap(handler.RequireAuth(s.updateMatching), eh, body))
	r.Put("/{id}", handler.Wrap(handler.RequireAuth(s.update), eh,
		handler.WithBinders(binder.Path(chi.URLParam), binder.JSON())))
	return r
}

func (s *Service) list(ctx handler.Context, _ struct{}) handler.Response {
	regs, err := s.ledger.ListByEmail(ctx, ctx.Session().Email())
	if err != nil {
		return handler.JSONError(httpError(err))
	}
	if regs == nil {
		regs = []ledger.Registration{}
	}
	return handler.JSON(regs)
}

func (s *Service) register(ctx handler.Context, req RegisterRequest) handler.Response {
	sess := ctx.Session()
	name := sanitizer.Trim(req.Name)
	if name == "" {
		var err error
		if name, err = s.displayName(ctx, sess); err != nil {
			return handler.JSONError(err)
		}
	}

	reg, err := s.ledger.Register(ctx, ledger.Input{
		Name:    name,
		Email:   sess.Email(),
		Details: req.Details,
	})
	if err != nil {
		return handler.JSONError(httpError(err))
	}
	return handler.JSON(reg, handler.WithJSONStatus(http.StatusCreated))
}

func (s *Service) update(ctx handler.Context, req UpdateRequest) handler.Response {
	reg, err := s.ledger.Update(ctx, ctx.Session().Email(), req.ID, req.Details)
	if err != nil {
		return handler.JSONError(httpError(err))
	}
	return handler.JSON(reg)
}

func (s *Service) updateMatching(ctx handler.Context, req MatchRequest) handler.Response {
	reg, err := s.ledger.UpdateMatching(ctx, ctx.Session().Email(), req.Original, req.Changes)
	if err != nil {
		return handler.JSONError(httpError(err))
	}
	return handler.JSON(reg)
}

// prefill uses the latest registration of the user, or defaults when there
// is none.
func (s *Service) prefill(ctx handler.Context, _ struct{}) handler.Response {
	sess := ctx.Session()
	name, err := s.displayName(ctx, sess)
	if err != nil {
		return handler.JSONError(err)
	}
	p := Prefill{
		Name:    name,
		Email:   sess.Email(),
		Details: ledger.Details{Equipment: ledger.EquipmentReturn},
	}

	latest, err := s.ledger.Latest(ctx, sess.Email())
	switch {
	case err == nil:
		p.RegistrationID = latest.ID
		p.Details = latest.Details()
	case !errors.Is(err, ledger.ErrRegistrationNotFound):
		return handler.JSONError(httpError(err))
	}
	return handler.JSON(p)
}

func (s *Service) summary(ctx handler.Context, _ struct{}) handler.Response {
	sum, err := s.ledger.Summary(ctx, ctx.Session().Email())
	if err != nil {
		return handler.JSONError(httpError(err))
	}
	return handler.JSON(sum, handler.WithJSONMeta(map[string]any{
		"fee":    s.ledger.Fee(),
		"policy": s.ledger.Policy(),
	}))
}

// displayName prefers the directory name, then the session name, then the
// email.
func (s *Service) displayName(ctx context.Context, sess *session.Session) (string, error) {
	u, err := s.users.Get(ctx, sess.Email())
	switch {
	case err == nil && u.Name != "":
		return u.Name, nil
	case err != nil && !errors.Is(err, directory.ErrUserNotFound):
		return "", err
	}
	if sess.Identity.Name != "" {
		return sess.Identity.Name, nil
	}
	return sess.Email(), nil
}
