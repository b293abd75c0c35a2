package middleware

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/yi-nology/lab_portal/pkg/common"
	"github.com/yi-nology/lab_portal/pkg/locale"
)

// Locale resolves the visitor's locale from the NEXT_LOCALE cookie and the
// Accept-Language header and stores it in the request context.
func Locale(resolver *locale.Resolver) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		loc := resolver.Resolve(string(c.Cookie(locale.CookieName)), string(c.GetHeader("Accept-Language")))
		c.Next(common.ContextWithLocale(ctx, loc))
	}
}
