package pagecache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	backendRedis = "redis"
	keyPrefix    = "lab_portal:page:"
)

// Redis shares rendered pages between instances.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedis wraps an open client.
func NewRedis(client *redis.Client, ttl time.Duration, log *zap.Logger) *Redis {
	if log == nil {
		log = zap.NewNop()
	}
	return &Redis{client: client, ttl: ttl, log: log.Named("pagecache")}
}

// Key returns the Redis key of a page.
func Key(loc, path string) string {
	return keyPrefix + entryKey(loc, path)
}

func (c *Redis) Get(ctx context.Context, loc, path string) (*Page, bool) {
	raw, err := c.client.Get(ctx, Key(loc, path)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("page cache read failed", zap.String("path", path), zap.Error(err))
		}
		lookupsTotal.WithLabelValues(backendRedis, "miss").Inc()
		return nil, false
	}
	var page Page
	if err := json.Unmarshal(raw, &page); err != nil {
		c.log.Warn("page cache entry corrupt", zap.String("path", path), zap.Error(err))
		lookupsTotal.WithLabelValues(backendRedis, "miss").Inc()
		return nil, false
	}
	lookupsTotal.WithLabelValues(backendRedis, "hit").Inc()
	return &page, true
}

func (c *Redis) Set(ctx context.Context, loc, path string, page *Page) {
	raw, err := json.Marshal(page)
	if err != nil {
		c.log.Warn("page cache encode failed", zap.String("path", path), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, Key(loc, path), raw, c.ttl).Err(); err != nil {
		c.log.Warn("page cache write failed", zap.String("path", path), zap.Error(err))
	}
}

// Invalidate deletes the entry of every locale; per-key failures are combined.
func (c *Redis) Invalidate(ctx context.Context, path string) error {
	var errs error
	for _, code := range supportedCodes() {
		if err := c.client.Del(ctx, Key(code, path)).Err(); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if errs == nil {
		invalidationsTotal.WithLabelValues(backendRedis).Inc()
	}
	return errs
}
