package records

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/regdesk/pkg/cache"
)

// DefaultCacheTTL bounds how stale a LoadAll result may be for readers
// other than the writer.
const DefaultCacheTTL = 60 * time.Second

type Option func(*Store)

func WithProvisioning(p Provisioning) Option {
	return func(s *Store) {
		if p != "" {
			s.provisioning = p
		}
	}
}

// WithCacheTTL sets the LoadAll cache lifetime. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.cacheTTL = ttl
	}
}

// WithCache shares a snapshot cache between stores. Entries are keyed by
// table name, so stores sharing a cache must use distinct tables.
func WithCache(c *cache.LRUCache[string, []Row]) Option {
	return func(s *Store) {
		s.cache = c
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}
