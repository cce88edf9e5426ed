package memory

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-statuspage/pkg/interfaces/cache"
)

type entry struct {
	value   []byte
	expires time.Time
}

// Cache is a process-local TTL cache used when no Redis address is configured.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

var _ cache.Cache = (*Cache)(nil)

func New() *Cache {
	return &Cache{entries: make(map[string]entry), now: time.Now}
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.entries[key] = e
	return nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}
