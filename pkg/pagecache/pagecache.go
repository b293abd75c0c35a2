// Package pagecache stores rendered pages per (locale, path) until their TTL
// expires or the revalidation webhook invalidates them.
package pagecache

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/yi-nology/lab_portal/pkg/config"
	"github.com/yi-nology/lab_portal/pkg/locale"
	"go.uber.org/zap"
)

var (
	lookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lab_portal_page_cache_lookups_total",
		Help: "Page cache lookups by backend and result.",
	}, []string{"backend", "result"})
	invalidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lab_portal_page_cache_invalidations_total",
		Help: "Page cache path invalidations by backend.",
	}, []string{"backend"})
)

// Page is a rendered response body.
type Page struct {
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Cache holds rendered pages.
type Cache interface {
	Get(ctx context.Context, loc, path string) (*Page, bool)
	Set(ctx context.Context, loc, path string, page *Page)
	// Invalidate drops path for every supported locale.
	Invalidate(ctx context.Context, path string) error
}

// New returns the Redis backend when rdb is non-nil, the in-process LRU otherwise.
func New(cfg config.SiteConfig, rdb *redis.Client, log *zap.Logger) Cache {
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	if rdb != nil {
		return NewRedis(rdb, ttl, log)
	}
	return NewLRU(cfg.CacheSize, ttl)
}

// NormalizePath strips the query string and trailing slash so "/news/" and
// "/news" share an entry.
func NormalizePath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}

func entryKey(loc, path string) string {
	return loc + ":" + NormalizePath(path)
}

func supportedCodes() []string {
	codes := make([]string, 0, len(locale.Supported))
	for _, info := range locale.Supported {
		codes = append(codes, info.Code)
	}
	return codes
}
