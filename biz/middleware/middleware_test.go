package middleware

import (
	"context"
	"testing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/yi-nology/lab_portal/pkg/common"
	"github.com/yi-nology/lab_portal/pkg/config"
	"github.com/yi-nology/lab_portal/pkg/locale"
)

func echoLocale(ctx context.Context, c *app.RequestContext) {
	loc, _ := common.GetLocale(ctx)
	c.String(consts.StatusOK, loc)
}

func TestRequireAdminToken(t *testing.T) {
	h := server.New()
	h.GET("/guarded", RequireAdminToken("t0ken"), func(_ context.Context, c *app.RequestContext) {
		c.String(consts.StatusOK, "ok")
	})
	h.GET("/disabled", RequireAdminToken(""), func(_ context.Context, c *app.RequestContext) {
		c.String(consts.StatusOK, "ok")
	})

	cases := []struct {
		path   string
		header string
		want   int
	}{
		{"/guarded", "", consts.StatusUnauthorized},
		{"/guarded", "Bearer wrong", consts.StatusUnauthorized},
		{"/guarded", "t0ken", consts.StatusUnauthorized},
		{"/guarded", "Bearer t0ken", consts.StatusOK},
		{"/disabled", "Bearer ", consts.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		resp := ut.PerformRequest(h.Engine, consts.MethodGet, tc.path, nil,
			ut.Header{Key: "Authorization", Value: tc.header}).Result()
		if resp.StatusCode() != tc.want {
			t.Fatalf("%s with %q: status = %d, want %d", tc.path, tc.header, resp.StatusCode(), tc.want)
		}
	}
}

func TestLocale(t *testing.T) {
	h := server.New()
	h.GET("/", Locale(locale.NewResolver("en")), echoLocale)

	cases := []struct {
		name    string
		headers []ut.Header
		want    string
	}{
		{"default", nil, locale.English},
		{"accept-language", []ut.Header{{Key: "Accept-Language", Value: "zh-HK,zh;q=0.9"}}, locale.Chinese},
		{"cookie wins", []ut.Header{
			{Key: "Accept-Language", Value: "zh-CN"},
			{Key: "Cookie", Value: locale.CookieName + "=en-GB"},
		}, locale.English},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := ut.PerformRequest(h.Engine, consts.MethodGet, "/", nil, tc.headers...).Result()
			if got := string(resp.Body()); got != tc.want {
				t.Fatalf("locale = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRequestIDAndRecovery(t *testing.T) {
	h := server.New()
	h.Use(Recovery(), RequestID())
	h.GET("/panic", func(context.Context, *app.RequestContext) { panic("boom") })
	h.GET("/id", func(ctx context.Context, c *app.RequestContext) {
		c.String(consts.StatusOK, common.GetRequestID(ctx))
	})

	resp := ut.PerformRequest(h.Engine, consts.MethodGet, "/panic", nil).Result()
	if resp.StatusCode() != consts.StatusInternalServerError {
		t.Fatalf("panic status = %d", resp.StatusCode())
	}

	resp = ut.PerformRequest(h.Engine, consts.MethodGet, "/id", nil, ut.Header{Key: requestIDHeader, Value: "abc"}).Result()
	if string(resp.Body()) != "abc" || string(resp.Header.Peek(requestIDHeader)) != "abc" {
		t.Fatalf("request id not propagated: %s", resp.Body())
	}
	resp = ut.PerformRequest(h.Engine, consts.MethodGet, "/id", nil).Result()
	if len(resp.Body()) == 0 {
		t.Fatalf("request id not generated")
	}
}

func TestCORSPreflight(t *testing.T) {
	h := server.New()
	h.Use(CORS(&config.CORSConfig{AllowOrigin: "https://lab.example"}))
	h.OPTIONS("/api/upload", func(context.Context, *app.RequestContext) {})

	resp := ut.PerformRequest(h.Engine, consts.MethodOptions, "/api/upload", nil).Result()
	if resp.StatusCode() != consts.StatusNoContent {
		t.Fatalf("preflight status = %d", resp.StatusCode())
	}
	if got := string(resp.Header.Peek("Access-Control-Allow-Origin")); got != "https://lab.example" {
		t.Fatalf("allow origin = %q", got)
	}
	if got := string(resp.Header.Peek("Access-Control-Allow-Methods")); got != config.DefaultCORS().AllowMethods {
		t.Fatalf("allow methods = %q, want the configured default", got)
	}
	if got := resp.Header.Peek("Access-Control-Allow-Credentials"); len(got) != 0 {
		t.Fatalf("credentials header should be absent, got %q", got)
	}
}

func TestCORSDefaultsMatchConfig(t *testing.T) {
	h := server.New()
	h.Use(CORS(nil))
	h.GET("/api/version", func(_ context.Context, c *app.RequestContext) { c.String(consts.StatusOK, "v") })

	resp := ut.PerformRequest(h.Engine, consts.MethodGet, "/api/version", nil).Result()
	want := config.DefaultCORS()
	if got := string(resp.Header.Peek("Access-Control-Allow-Headers")); got != want.AllowHeaders {
		t.Fatalf("allow headers = %q, want %q", got, want.AllowHeaders)
	}
	if got := string(resp.Header.Peek("Access-Control-Allow-Origin")); got != want.AllowOrigin {
		t.Fatalf("allow origin = %q, want %q", got, want.AllowOrigin)
	}
	if string(resp.Body()) != "v" {
		t.Fatalf("request should reach the handler, got %q", resp.Body())
	}
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	h := server.New()
	h.Use(Metrics())
	h.GET("/news/:id", func(_ context.Context, c *app.RequestContext) { c.String(consts.StatusOK, "") })

	before := testutil.ToFloat64(requestsTotal.WithLabelValues("/news/:id", consts.MethodGet, "200"))
	ut.PerformRequest(h.Engine, consts.MethodGet, "/news/1", nil)
	ut.PerformRequest(h.Engine, consts.MethodGet, "/news/2", nil)
	after := testutil.ToFloat64(requestsTotal.WithLabelValues("/news/:id", consts.MethodGet, "200"))
	if after-before != 2 {
		t.Fatalf("counter delta = %v, want 2", after-before)
	}
}
