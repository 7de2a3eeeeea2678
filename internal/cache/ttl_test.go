package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTL_SetGetExpire(t *testing.T) {
	ctx := context.Background()
	c := NewTTL(0)
	c.ttl = time.Minute
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set(ctx, "appointments:a:2025-01-01:2025-01-31", []byte(`[]`))
	assert.Equal(t, []byte(`[]`), c.Get(ctx, "appointments:a:2025-01-01:2025-01-31"))

	now = now.Add(2 * time.Minute)
	assert.Nil(t, c.Get(ctx, "appointments:a:2025-01-01:2025-01-31"))
}

func TestTTL_DeletePrefix(t *testing.T) {
	ctx := context.Background()
	c := NewTTL(0)
	c.ttl = time.Minute
	c.Set(ctx, "appointments:a:1", []byte("1"))
	c.Set(ctx, "appointments:a:2", []byte("2"))
	c.Set(ctx, "appointments:b:1", []byte("3"))

	c.DeletePrefix(ctx, "appointments:a:")
	assert.Nil(t, c.Get(ctx, "appointments:a:1"))
	assert.Nil(t, c.Get(ctx, "appointments:a:2"))
	assert.Equal(t, []byte("3"), c.Get(ctx, "appointments:b:1"))
}

func TestNew_WithoutRedisAddrIsInMemory(t *testing.T) {
	s, err := New(context.Background(), time.Second, RedisOptions{})
	assert.NoError(t, err)
	_, ok := s.(*TTL)
	assert.True(t, ok)
}
