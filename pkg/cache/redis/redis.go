package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/goliatone/go-statuspage/pkg/interfaces/cache"
	"github.com/goliatone/go-statuspage/pkg/interfaces/logger"
)

var ErrClientRequired = errors.New("redis cache: client is required")

// Connect builds a client from a redis:// URL or a bare host:port.
func Connect(ctx context.Context, addr string) (*goredis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("redis cache: address is required")
	}
	var client *goredis.Client
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opt, err := goredis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("redis cache: parse url: %w", err)
		}
		client = goredis.NewClient(opt)
	} else {
		client = goredis.NewClient(&goredis.Options{Addr: addr})
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis cache: ping: %w", err)
	}
	return client, nil
}

// Option customises the cache.
type Option func(*Cache)

// WithPrefix namespaces every key.
func WithPrefix(prefix string) Option {
	return func(c *Cache) {
		c.prefix = prefix
	}
}

// WithLogger sets the logger used for backend failures.
func WithLogger(l logger.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// Cache stores byte values in Redis.
type Cache struct {
	client goredis.Cmdable
	prefix string
	logger logger.Logger
}

var _ cache.Cache = (*Cache)(nil)

// New wraps an existing client.
func New(client goredis.Cmdable, opts ...Option) (*Cache, error) {
	if client == nil {
		return nil, ErrClientRequired
	}
	c := &Cache{client: client, logger: &logger.Nop{}}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		c.logger.Warn("redis cache get failed", logger.F("key", key), logger.F("error", err))
		return nil, false, err
	}
	return val, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		c.logger.Warn("redis cache set failed", logger.F("key", key), logger.F("error", err))
		return err
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}

func (c *Cache) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + k
}
