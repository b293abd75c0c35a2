package handler

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/yi-nology/lab_portal/biz/service/revalidate"
	"go.uber.org/zap"
)

// Revalidator drops cached pages for a CMS change event.
type Revalidator interface {
	Revalidate(ctx context.Context, ev revalidate.Event) *revalidate.Result
}

// RevalidateHandler serves the CMS webhook that invalidates cached pages.
type RevalidateHandler struct {
	service Revalidator
	secret  string
	log     *zap.Logger
}

func NewRevalidateHandler(service Revalidator, secret string, log *zap.Logger) *RevalidateHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &RevalidateHandler{service: service, secret: secret, log: log.Named("revalidate")}
}

// authorize writes the rejection and returns false unless the secret query
// parameter matches the configured one.
func (h *RevalidateHandler) authorize(c *app.RequestContext) bool {
	if h.secret == "" {
		h.log.Error("revalidate secret is not configured")
		c.JSON(consts.StatusInternalServerError, utils.H{"success": false, "message": "Server configuration error"})
		return false
	}
	if subtle.ConstantTimeCompare([]byte(c.Query("secret")), []byte(h.secret)) != 1 {
		h.log.Warn("invalid revalidate secret", zap.String("client_ip", c.ClientIP()))
		c.JSON(consts.StatusUnauthorized, utils.H{"success": false, "message": "Invalid token"})
		return false
	}
	return true
}

// Revalidate handles POST /api/revalidate. An unreadable body revalidates every page.
func (h *RevalidateHandler) Revalidate(ctx context.Context, c *app.RequestContext) {
	if !h.authorize(c) {
		return
	}
	ev := revalidate.ParseEvent(c.Request.Body())
	h.log.Info("revalidate requested",
		zap.String("model", ev.Model),
		zap.String("entry_id", ev.Entry.ID),
		zap.String("entry_slug", ev.Entry.Slug),
	)
	c.JSON(consts.StatusOK, h.service.Revalidate(ctx, ev))
}

// Health handles GET /api/revalidate.
func (h *RevalidateHandler) Health(_ context.Context, c *app.RequestContext) {
	if !h.authorize(c) {
		return
	}
	c.JSON(consts.StatusOK, utils.H{
		"status":          "ok",
		"message":         "Revalidate API is working",
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
		"supportedModels": revalidate.SupportedModels(),
	})
}
