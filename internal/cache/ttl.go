package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// TTL is an in-process Store. Expired entries are dropped lazily on read and by a janitor goroutine.
type TTL struct {
	mu    sync.RWMutex
	items map[string]item
	ttl   time.Duration
	now   func() time.Time
}

type item struct {
	data []byte
	exp  time.Time
}

func NewTTL(ttl time.Duration) *TTL {
	c := &TTL{items: make(map[string]item), ttl: ttl, now: time.Now}
	if ttl > 0 {
		go c.janitor()
	}
	return c
}

func (c *TTL) janitor() {
	tick := time.NewTicker(c.ttl)
	defer tick.Stop()
	for range tick.C {
		c.mu.Lock()
		now := c.now()
		for k, v := range c.items {
			if !v.exp.After(now) {
				delete(c.items, k)
			}
		}
		c.mu.Unlock()
	}
}

func (c *TTL) Get(_ context.Context, key string) []byte {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || !it.exp.After(c.now()) {
		return nil
	}
	return it.data
}

func (c *TTL) Set(_ context.Context, key string, value []byte) {
	c.mu.Lock()
	c.items[key] = item{data: value, exp: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *TTL) DeletePrefix(_ context.Context, prefix string) {
	c.mu.Lock()
	for k := range c.items {
		if strings.HasPrefix(k, prefix) {
			delete(c.items, k)
		}
	}
	c.mu.Unlock()
}
