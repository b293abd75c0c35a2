package handler

import (
	"context"
	"errors"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/yi-nology/lab_portal/biz/service/site"
	"github.com/yi-nology/lab_portal/pkg/pagecache"
	"go.uber.org/zap"
)

// PageService renders the public site.
type PageService interface {
	Page(ctx context.Context, loc, path string) (*pagecache.Page, error)
	NotFound(loc, path string) *pagecache.Page
	SubmitContact(ctx context.Context, form site.ContactForm) error
	ContactResult(ctx context.Context, loc, status string, form site.ContactForm) (*pagecache.Page, error)
}

// PageHandler serves rendered HTML pages.
type PageHandler struct {
	service PageService
	log     *zap.Logger
}

func NewPageHandler(service PageService, log *zap.Logger) *PageHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PageHandler{service: service, log: log.Named("page")}
}

// Show renders the page at the request path in the visitor's locale.
func (h *PageHandler) Show(ctx context.Context, c *app.RequestContext) {
	loc := localeOf(ctx, "")
	path := string(c.Request.URI().Path())

	page, err := h.service.Page(ctx, loc, path)
	if err != nil {
		if errors.Is(err, site.ErrPageNotFound) {
			h.write(c, consts.StatusNotFound, loc, h.service.NotFound(loc, path))
			return
		}
		h.log.Error("render page failed", zap.String("path", path), zap.Error(err))
		c.Data(consts.StatusInternalServerError, consts.MIMETextPlainUTF8, []byte(internalErrorBody))
		return
	}
	h.write(c, consts.StatusOK, loc, page)
}

// SubmitContact handles the contact form and renders the outcome in place.
func (h *PageHandler) SubmitContact(ctx context.Context, c *app.RequestContext) {
	loc := localeOf(ctx, "")
	form := site.ContactForm{
		Name:    c.PostForm("name"),
		Email:   c.PostForm("email"),
		Message: c.PostForm("message"),
	}

	status, code := site.ContactSent, consts.StatusOK
	if err := h.service.SubmitContact(ctx, form); err != nil {
		status, code = site.ContactFailed, consts.StatusBadGateway
		if errors.Is(err, site.ErrInvalidContact) {
			status, code = site.ContactInvalid, consts.StatusBadRequest
		}
	}

	page, err := h.service.ContactResult(ctx, loc, status, form)
	if err != nil {
		h.log.Error("render contact result failed", zap.Error(err))
		c.Data(consts.StatusInternalServerError, consts.MIMETextPlainUTF8, []byte(internalErrorBody))
		return
	}
	h.write(c, code, loc, page)
}

const internalErrorBody = "internal server error"

func (h *PageHandler) write(c *app.RequestContext, status int, loc string, page *pagecache.Page) {
	c.Response.Header.Set("Content-Language", loc)
	c.Response.Header.Set("Vary", "Cookie, Accept-Language")
	c.Data(status, page.ContentType, page.Body)
}
