package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/tidwall/gjson"
	"github.com/yi-nology/lab_portal/pkg/locale"
	"github.com/yi-nology/lab_portal/pkg/validator"
)

// LocaleHandler stores the visitor's language choice.
type LocaleHandler struct {
	resolver *locale.Resolver
}

func NewLocaleHandler(resolver *locale.Resolver) *LocaleHandler {
	return &LocaleHandler{resolver: resolver}
}

// SetLocale handles POST /api/locale. JSON clients get the stored locale back;
// the switcher form is redirected to the page it was submitted from.
func (h *LocaleHandler) SetLocale(_ context.Context, c *app.RequestContext) {
	isJSON := strings.HasPrefix(string(c.ContentType()), consts.MIMEApplicationJSON)

	var requested string
	if isJSON {
		requested = gjson.GetBytes(c.Request.Body(), "locale").String()
	} else {
		requested = c.PostForm("locale")
	}
	if strings.TrimSpace(requested) == "" {
		WriteBadRequest(c, errors.New("locale is required"))
		return
	}

	loc := h.resolver.Normalize(requested)
	c.SetCookie(locale.CookieName, loc, locale.CookieMaxAge, "/", "", protocol.CookieSameSiteLaxMode, false, false)

	if isJSON {
		RespondData(c, utils.H{"locale": loc})
		return
	}
	c.Redirect(consts.StatusSeeOther, []byte(validator.LocalRedirect(c.PostForm("redirect"))))
}
