package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Redis is a Store shared between API instances. Errors are logged and treated as misses.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedis(ctx context.Context, ttl time.Duration, opts RedisOptions) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return &Redis{client: client, ttl: ttl, log: zap.NewNop()}, nil
}

// WithLogger sets the logger used for cache errors.
func (c *Redis) WithLogger(l *zap.Logger) *Redis {
	c.log = l
	return c
}

func (c *Redis) Close() error { return c.client.Close() }

func (c *Redis) Get(ctx context.Context, key string) []byte {
	b, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("cache get", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
	return b
}

func (c *Redis) Set(ctx context.Context, key string, value []byte) {
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.log.Warn("cache set", zap.String("key", key), zap.Error(err))
	}
}

// DeletePrefix scans with MATCH prefix* and deletes in batches.
func (c *Redis) DeletePrefix(ctx context.Context, prefix string) {
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			c.client.Del(ctx, batch...)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		c.client.Del(ctx, batch...)
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("cache delete prefix", zap.String("prefix", prefix), zap.Error(err))
	}
}
