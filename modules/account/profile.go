package account

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/regdesk/binder"
	"github.com/dmitrymomot/regdesk/handler"
	"github.com/dmitrymomot/regdesk/pkg/file"
	"github.com/dmitrymomot/regdesk/pkg/logger"
	"github.com/dmitrymomot/regdesk/pkg/sanitizer"
	"github.com/dmitrymomot/regdesk/pkg/session"
	"github.com/dmitrymomot/regdesk/pkg/validator"
	"github.com/dmitrymomot/regdesk/svc/directory"
)

// DefaultMaxAvatarBytes limits avatar uploads to 5MB.
const DefaultMaxAvatarBytes = 5 << 20

// Users is implemented by *directory.Directory.
type Users interface {
	Get(ctx context.Context, email string) (*directory.User, error)
	Upsert(ctx context.Context, email, name, picture string) error
}

type UpdateProfileRequest struct {
	Name string `json:"name"`
}

type AvatarRequest struct {
	Avatar *binder.FileUpload `file:"avatar"`
}

type ProfileService struct {
	users          Users
	storage        file.Storage
	sessions       Sessions
	maxAvatarBytes int64
	errorHandler   handler.ErrorHandler
	logger         *slog.Logger
}

type ProfileOption func(*ProfileService)

func WithMaxAvatarBytes(n int64) ProfileOption {
	return func(p *ProfileService) {
		if n > 0 {
			p.maxAvatarBytes = n
		}
	}
}

func WithProfileErrorHandler(h handler.ErrorHandler) ProfileOption {
	return func(p *ProfileService) {
		if h != nil {
			p.errorHandler = h
		}
	}
}

func WithProfileLogger(l *slog.Logger) ProfileOption {
	return func(p *ProfileService) {
		if l != nil {
			p.logger = l
		}
	}
}

func NewProfileService(users Users, storage file.Storage, sessions Sessions, opts ...ProfileOption) *ProfileService {
	p := &ProfileService{
		users:          users,
		storage:        storage,
		sessions:       sessions,
		maxAvatarBytes: DefaultMaxAvatarBytes,
		logger:         logger.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.errorHandler == nil {
		p.errorHandler = handler.NewErrorHandler(p.logger)
	}
	p.logger = p.logger.With(logger.Component("account.profile"))
	return p
}

func (p *ProfileService) Handle() http.Handler {
	r := chi.NewRouter()
	eh := handler.WithErrorHandler(p.errorHandler)
	r.Get("/", handler.Wrap(handler.RequireAuth(p.get), eh))
	r.Put("/", handler.Wrap(handler.RequireAuth(p.update), eh, handler.WithBinders(binder.JSON())))
	r.Post("/avatar", handler.Wrap(handler.RequireAuth(p.avatar), eh, handler.WithBinders(binder.File(p.maxAvatarBytes))))
	return r
}

func (p *ProfileService) get(ctx handler.Context, _ struct{}) handler.Response {
	u, err := p.users.Get(ctx, ctx.Session().Email())
	if err != nil {
		return handler.JSONError(httpError(err))
	}
	return handler.JSON(u)
}

func (p *ProfileService) update(ctx handler.Context, req UpdateProfileRequest) handler.Response {
	name := sanitizer.Trim(req.Name)
	if err := validator.Apply(
		validator.Required("name", name),
		validator.MaxLen("name", name, 200),
		validator.NoControlChars("name", name),
	); err != nil {
		return handler.JSONError(err)
	}

	s := ctx.Session()
	current, err := p.current(ctx, s)
	if err != nil {
		return handler.JSONError(httpError(err))
	}
	current.Name = name
	return p.save(ctx, s, current)
}

func (p *ProfileService) avatar(ctx handler.Context, req AvatarRequest) handler.Response {
	if req.Avatar == nil {
		return handler.JSONError(httpError(ErrAvatarRequired))
	}
	img, err := file.ReadImage(bytes.NewReader(req.Avatar.Content), p.maxAvatarBytes)
	if err != nil {
		return handler.JSONError(httpError(err))
	}

	s := ctx.Session()
	current, err := p.current(ctx, s)
	if err != nil {
		return handler.JSONError(httpError(err))
	}

	obj, err := p.storage.Put(ctx, file.AvatarKey(current.Email, img.Extension), img.Reader(), img.Size(), img.ContentType)
	if err != nil {
		return handler.JSONError(err)
	}
	p.logger.InfoContext(ctx, "avatar stored", logger.Email(current.Email), slog.Int64("size", obj.Size))

	current.Picture = obj.URL
	return p.save(ctx, s, current)
}

// current returns the directory entry of the session user, falling back to
// the session identity when the directory has none.
func (p *ProfileService) current(ctx context.Context, s *session.Session) (*directory.User, error) {
	u, err := p.users.Get(ctx, s.Email())
	switch {
	case err == nil:
		return u, nil
	case errors.Is(err, directory.ErrUserNotFound):
		return &directory.User{Email: s.Identity.Email, Name: s.Identity.Name, Picture: s.Identity.Picture}, nil
	default:
		return nil, err
	}
}

func (p *ProfileService) save(ctx handler.Context, s *session.Session, u *directory.User) handler.Response {
	if err := p.users.Upsert(ctx, u.Email, u.Name, u.Picture); err != nil {
		return handler.JSONError(httpError(err))
	}
	s.Identity.Name = u.Name
	s.Identity.Picture = u.Picture
	if err := p.sessions.Save(ctx, ctx.ResponseWriter(), s); err != nil {
		return handler.JSONError(err)
	}
	return handler.JSON(u)
}
