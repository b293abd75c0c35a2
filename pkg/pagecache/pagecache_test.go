package pagecache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/yi-nology/lab_portal/pkg/config"
	"github.com/yi-nology/lab_portal/pkg/locale"
)

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"":             "/",
		"/":            "/",
		"/news/":       "/news",
		"news":         "/news",
		"/news?p=2":    "/news",
		"/news/42#top": "/news/42",
	}
	for input, want := range cases {
		require.Equal(t, want, NormalizePath(input), "input %q", input)
	}
}

func TestLRUSetGetInvalidate(t *testing.T) {
	ctx := context.Background()
	c := NewLRU(16, time.Minute)
	page := &Page{ContentType: "text/html", Body: []byte("<h1>news</h1>")}

	c.Set(ctx, locale.Chinese, "/news", page)
	c.Set(ctx, locale.English, "/news/", page)
	c.Set(ctx, locale.English, "/members", page)

	got, ok := c.Get(ctx, locale.Chinese, "/news")
	require.True(t, ok)
	require.Equal(t, page, got)

	require.NoError(t, c.Invalidate(ctx, "/news"))
	_, ok = c.Get(ctx, locale.Chinese, "/news")
	require.False(t, ok)
	_, ok = c.Get(ctx, locale.English, "/news")
	require.False(t, ok)
	_, ok = c.Get(ctx, locale.English, "/members")
	require.True(t, ok)
	require.Equal(t, 1, c.Len())
}

func TestLRUExpires(t *testing.T) {
	ctx := context.Background()
	c := NewLRU(4, 20*time.Millisecond)
	c.Set(ctx, locale.English, "/", &Page{Body: []byte("home")})
	require.Eventually(t, func() bool {
		_, ok := c.Get(ctx, locale.English, "/")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestRedisKey(t *testing.T) {
	require.Equal(t, "lab_portal:page:zh-CN:/news/42", Key(locale.Chinese, "/news/42/"))
}

func TestNewPicksBackend(t *testing.T) {
	cfg := config.SiteConfig{CacheTTLSeconds: 60, CacheSize: 8}
	_, isLRU := New(cfg, nil, nil).(*LRU)
	require.True(t, isLRU)

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer rdb.Close()
	_, isRedis := New(cfg, rdb, nil).(*Redis)
	require.True(t, isRedis)
}

func TestRedisUnavailableDegradesToMiss(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()
	c := NewRedis(rdb, time.Minute, nil)
	ctx := context.Background()

	c.Set(ctx, locale.English, "/", &Page{Body: []byte("home")})
	_, ok := c.Get(ctx, locale.English, "/")
	require.False(t, ok)
	require.Error(t, c.Invalidate(ctx, "/"))
}
