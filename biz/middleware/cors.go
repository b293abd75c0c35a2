package middleware

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/yi-nology/lab_portal/pkg/config"
)

// seconds a browser may reuse a preflight answer
const corsMaxAge = "600"

// CORS applies the cross-origin policy of the JSON API and answers preflights.
// Empty settings fall back to config.DefaultCORS.
func CORS(cfg *config.CORSConfig) app.HandlerFunc {
	policy := config.DefaultCORS()
	if cfg != nil {
		if cfg.AllowOrigin != "" {
			policy.AllowOrigin = cfg.AllowOrigin
		}
		if cfg.AllowMethods != "" {
			policy.AllowMethods = cfg.AllowMethods
		}
		if cfg.AllowHeaders != "" {
			policy.AllowHeaders = cfg.AllowHeaders
		}
		policy.AllowCredentials = cfg.AllowCredentials
	}

	return func(ctx context.Context, c *app.RequestContext) {
		header := &c.Response.Header
		header.Set("Access-Control-Allow-Origin", policy.AllowOrigin)
		if policy.AllowOrigin != "*" {
			header.Add("Vary", "Origin")
		}
		header.Set("Access-Control-Allow-Methods", policy.AllowMethods)
		header.Set("Access-Control-Allow-Headers", policy.AllowHeaders)
		if policy.AllowCredentials {
			header.Set("Access-Control-Allow-Credentials", "true")
		}

		if string(c.Request.Method()) == consts.MethodOptions {
			header.Set("Access-Control-Max-Age", corsMaxAge)
			c.AbortWithStatus(consts.StatusNoContent)
			return
		}
		c.Next(ctx)
	}
}
