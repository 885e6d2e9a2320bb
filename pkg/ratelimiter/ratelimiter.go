package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidConfig = errors.New("ratelimiter: invalid configuration")
	ErrEmptyKey      = errors.New("ratelimiter: empty key")
)

// Config bounds how many attempts a key may make per window.
type Config struct {
	Limit  int           `env:"RATE_LIMIT_LOGIN" envDefault:"20"`      // Limit is the number of attempts per window; 0 disables limiting.
	Window time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`     // Window is the span the limit applies to.
	Prefix string        `env:"RATE_LIMIT_PREFIX" envDefault:"login:"` // Prefix namespaces keys in shared stores.
}

// Enabled reports whether limiting is switched on.
func (c Config) Enabled() bool { return c.Limit > 0 }

func (c Config) validate() error {
	if c.Limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidConfig, c.Limit)
	}
	if c.Window <= 0 {
		return fmt.Errorf("%w: window must be positive, got %v", ErrInvalidConfig, c.Window)
	}
	return nil
}

// Store counts hits per key within a window.
type Store interface {
	// Hit records one attempt and returns the count so far in the current
	// window together with the moment the window closes.
	Hit(ctx context.Context, key string, window time.Duration) (count int, resetAt time.Time, err error)
}

// Result describes one decision.
type Result struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

func (r Result) Allowed() bool { return r.Remaining >= 0 }

// RetryAfter is zero for allowed requests.
func (r Result) RetryAfter(now time.Time) time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(0, r.ResetAt.Sub(now))
}

// Limiter applies a fixed-window limit on top of a Store.
type Limiter struct {
	store Store
	cfg   Config
}

func New(store Store, cfg Config) (*Limiter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("%w: nil store", ErrInvalidConfig)
	}
	return &Limiter{store: store, cfg: cfg}, nil
}

// Allow records an attempt for key and reports whether it fits the limit.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	if key == "" {
		return Result{}, ErrEmptyKey
	}
	count, resetAt, err := l.store.Hit(ctx, l.cfg.Prefix+key, l.cfg.Window)
	if err != nil {
		return Result{}, fmt.Errorf("ratelimiter: hit %q: %w", key, err)
	}
	return Result{
		Limit:     l.cfg.Limit,
		Remaining: l.cfg.Limit - count,
		ResetAt:   resetAt,
	}, nil
}
