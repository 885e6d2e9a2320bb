package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/regdesk/handler"
	"github.com/dmitrymomot/regdesk/modules/account"
	"github.com/dmitrymomot/regdesk/modules/registration"
	"github.com/dmitrymomot/regdesk/pkg/auth"
	"github.com/dmitrymomot/regdesk/pkg/clientip"
	"github.com/dmitrymomot/regdesk/pkg/config"
	"github.com/dmitrymomot/regdesk/pkg/file"
	"github.com/dmitrymomot/regdesk/pkg/httpserver"
	"github.com/dmitrymomot/regdesk/pkg/logger"
	"github.com/dmitrymomot/regdesk/pkg/ratelimiter"
	"github.com/dmitrymomot/regdesk/pkg/records"
	"github.com/dmitrymomot/regdesk/pkg/redis"
	"github.com/dmitrymomot/regdesk/pkg/requestid"
	"github.com/dmitrymomot/regdesk/pkg/session"
	"github.com/dmitrymomot/regdesk/pkg/token"
	"github.com/dmitrymomot/regdesk/svc/directory"
	"github.com/dmitrymomot/regdesk/svc/ledger"
	"github.com/dmitrymomot/regdesk/svc/signin"
)

const sessionSweepInterval = 10 * time.Minute

type app struct {
	cfg      config.Config
	log      *slog.Logger
	router   http.Handler
	probes   []httpserver.Probe
	closers  []func(context.Context) error
	sessions *session.MemoryStore
}

func (a *app) onClose(fn func(context.Context) error) {
	a.closers = append(a.closers, fn)
}

// close runs the registered closers, used when build fails halfway.
func (a *app) close(ctx context.Context) {
	for _, fn := range a.closers {
		if err := fn(ctx); err != nil {
			a.log.ErrorContext(ctx, "cleanup failed", logger.Error(err))
		}
	}
}

func build(ctx context.Context, cfg config.Config, log *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	signer, err := token.NewSigner(cfg.App.SigningKey)
	if err != nil {
		return a, err
	}

	backend, err := a.openBackend(ctx)
	if err != nil {
		return a, err
	}

	provisioning, err := records.ParseProvisioning(cfg.Store.Provisioning)
	if err != nil {
		return a, fmt.Errorf("%w: STORE_PROVISIONING %q", err, cfg.Store.Provisioning)
	}
	storeOpts := []records.Option{
		records.WithProvisioning(provisioning),
		records.WithCacheTTL(cfg.Store.CacheTTL),
		records.WithLogger(log),
	}
	usersTable, err := records.Open(ctx, backend, cfg.Store.UsersTable, directory.Headers, storeOpts...)
	if err != nil {
		return a, err
	}
	regTable, err := records.Open(ctx, backend, cfg.Store.RegistrationsTable, ledger.Headers, storeOpts...)
	if err != nil {
		return a, err
	}

	policy, err := ledger.ParsePolicy(cfg.App.LedgerPolicy)
	if err != nil {
		return a, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	users := directory.New(usersTable, directory.WithLogger(log))
	regs := ledger.New(regTable,
		ledger.WithPolicy(policy),
		ledger.WithFee(cfg.App.EquipmentFee),
		ledger.WithLogger(log),
	)

	flow := auth.NewFlow(auth.NewGoogleAdapter(cfg.Google), users,
		auth.WithLogger(log),
		auth.WithVerifiedOnly(cfg.Google.VerifiedOnly),
	)
	signins := signin.New(flow, users, signer, signin.WithLogger(log))

	sessionStore, rateStore, err := a.openSessionStores(ctx)
	if err != nil {
		return a, err
	}
	sessions := session.NewManager(sessionStore,
		session.WithConfig(cfg.Session),
		session.WithTransport(session.NewCookieTransport(cfg.Session.CookieName, cfg.Session.SecureCookies)),
		session.WithLogger(log),
	)

	storage, err := file.New(ctx, cfg.Avatar)
	if err != nil {
		return a, err
	}

	errs := handler.NewErrorHandler(log)
	authOpts := []account.AuthOption{
		account.WithRedirectURL(cfg.App.PublicURL),
		account.WithAuthErrorHandler(errs),
		account.WithAuthLogger(log),
	}
	if cfg.RateLimit.Enabled() {
		lim, err := ratelimiter.New(rateStore, cfg.RateLimit)
		if err != nil {
			return a, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
		}
		authOpts = append(authOpts, account.WithLoginLimiter(ratelimiter.Middleware(lim, func(r *http.Request) string {
			return clientip.FromContext(r.Context())
		}, ratelimiter.WithLogger(log))))
	}
	authSvc := account.NewAuthService(signins, sessions, authOpts...)
	profileSvc := account.NewProfileService(users, storage, sessions,
		account.WithMaxAvatarBytes(cfg.Avatar.MaxBytes),
		account.WithProfileErrorHandler(errs),
		account.WithProfileLogger(log),
	)
	regSvc := registration.NewService(regs, users,
		registration.WithErrorHandler(errs),
		registration.WithLogger(log),
	)

	r := chi.NewRouter()
	r.Use(
		requestid.Middleware,
		clientip.NewResolver(cfg.HTTP.TrustedIPHeaders...).Middleware,
		maxBody(cfg.HTTP.MaxBodyBytes),
	)
	r.Get("/healthz", httpserver.Liveness())
	r.Get("/readyz", httpserver.Readiness(log, cfg.HTTP.ReadinessTimeout, a.probes...))
	if local, ok := storage.(*file.LocalStorage); ok && strings.HasPrefix(cfg.Avatar.BaseURL, "/") {
		prefix := strings.TrimSuffix(cfg.Avatar.BaseURL, "/")
		r.Handle(prefix+"/*", http.StripPrefix(prefix, http.FileServer(http.Dir(local.BaseDir()))))
	}
	r.Group(func(r chi.Router) {
		r.Use(sessions.Middleware)
		r.Mount("/account", account.Router(account.RouterOptions{
			Auth:    authSvc,
			Profile: profileSvc,
		}))
		r.Mount("/registrations", regSvc.Handle())
	})
	a.router = r

	return a, nil
}

func (a *app) serve(ctx context.Context) error {
	if a.sessions != nil {
		go a.sweepSessions(ctx)
	}

	opts := []httpserver.Option{httpserver.WithLogger(a.log)}
	for _, fn := range a.closers {
		opts = append(opts, httpserver.WithCleanup(fn))
	}
	return httpserver.NewFromConfig(a.cfg.HTTP, opts...).Run(ctx, a.router)
}

// openSessionStores picks Redis when REDIS_URL is set and process memory
// otherwise. The rate limiter shares the same choice.
func (a *app) openSessionStores(ctx context.Context) (session.Store, ratelimiter.Store, error) {
	if a.cfg.Redis.ConnectionURL == "" {
		a.sessions = session.NewMemoryStore()
		return a.sessions, ratelimiter.NewMemoryStore(), nil
	}

	client, err := redis.Connect(ctx, a.cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	a.onClose(func(context.Context) error { return client.Close() })
	a.probes = append(a.probes, httpserver.Probe{Name: "redis", Check: redis.Healthcheck(client)})
	a.log.InfoContext(ctx, "sessions stored in redis", logger.Component("sessions"))

	return redis.NewSessionStore(client, a.cfg.Redis.KeyPrefix),
		redis.NewRateStore(client, a.cfg.RateLimit.Prefix),
		nil
}

func (a *app) sweepSessions(ctx context.Context) {
	t := time.NewTicker(sessionSweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := a.sessions.DeleteExpired(ctx); n > 0 {
				a.log.DebugContext(ctx, "expired sessions removed", logger.Component("sessions"), slog.Int("count", n))
			}
		}
	}
}

// maxBody caps request bodies; a non-positive limit disables the cap.
func maxBody(n int64) func(http.Handler) http.Handler {
	if n <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.RequestSize(n)
}
