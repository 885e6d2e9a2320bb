// Package redis connects to Redis with go-redis/v9 and provides a
// session.Store that keeps each session as a JSON value whose Redis TTL
// follows the session expiry, plus a ratelimiter.Store shared by replicas.
package redis
