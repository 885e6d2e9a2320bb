package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/regdesk/pkg/ratelimiter"
)

const defaultRatePrefix = "regdesk:rate:"

// RateStore implements ratelimiter.Store with INCR and a key expiry, so every
// replica sharing the instance sees the same counters.
type RateStore struct {
	client redis.Cmdable
	prefix string
	now    func() time.Time
}

var _ ratelimiter.Store = (*RateStore)(nil)

func NewRateStore(client redis.Cmdable, prefix string) *RateStore {
	if prefix == "" {
		prefix = defaultRatePrefix
	}
	return &RateStore{client: client, prefix: prefix, now: time.Now}
}

func (s *RateStore) Hit(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	k := s.prefix + key

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		// NX keeps the first hit's expiry for the whole window.
		p.ExpireNX(ctx, k, window)
		ttl = p.PTTL(ctx, k)
		return nil
	})
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis: rate hit: %w", err)
	}

	left := ttl.Val()
	if left <= 0 {
		left = window
	}
	return int(incr.Val()), s.now().Add(left), nil
}
