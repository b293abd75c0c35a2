package middleware

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/yi-nology/lab_portal/pkg/common"
)

// RequireAdminToken guards the media API with a static bearer token.
// With no token configured every request is refused.
func RequireAdminToken(token string) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		if token == "" {
			c.JSON(consts.StatusServiceUnavailable, common.CommonResponse{
				Code:  consts.StatusServiceUnavailable,
				Error: "upload api disabled",
				Msg:   "admin token is not configured",
			})
			c.Abort()
			return
		}

		header := string(c.GetHeader("Authorization"))
		provided, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(provided)), []byte(token)) != 1 {
			c.JSON(consts.StatusUnauthorized, common.CommonResponse{
				Code:  consts.StatusUnauthorized,
				Error: "authentication required",
				Msg:   "missing or invalid bearer token",
			})
			c.Abort()
			return
		}
		c.Next(ctx)
	}
}
