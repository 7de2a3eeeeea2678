package cache

import (
	"context"
	"time"
)

// Store caches serialized responses (usually JSON). A miss returns nil.
type Store interface {
	Get(ctx context.Context, key string) []byte
	Set(ctx context.Context, key string, value []byte)
	DeletePrefix(ctx context.Context, prefix string)
}

// RedisOptions selects the Redis backend; an empty Addr means in-memory.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// New returns a Redis-backed store when opts.Addr is set, an in-memory TTL store otherwise.
func New(ctx context.Context, ttl time.Duration, opts RedisOptions) (Store, error) {
	if opts.Addr == "" {
		return NewTTL(ttl), nil
	}
	return NewRedis(ctx, ttl, opts)
}
