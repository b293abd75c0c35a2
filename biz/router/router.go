package router

import (
	"context"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/yi-nology/lab_portal/biz/handler"
	"github.com/yi-nology/lab_portal/biz/handler/version"
	"github.com/yi-nology/lab_portal/biz/middleware"
	"github.com/yi-nology/lab_portal/pkg/config"
	"github.com/yi-nology/lab_portal/pkg/locale"
)

// Handlers groups everything the routes dispatch to.
type Handlers struct {
	Upload     *handler.UploadHandler
	Revalidate *handler.RevalidateHandler
	Locale     *handler.LocaleHandler
	Page       *handler.PageHandler
	Asset      *handler.AssetHandler
	// Media is set only when uploads live on the local filesystem.
	Media      *handler.MediaHandler
}

// Options carries the settings the route middleware needs.
type Options struct {
	Resolver   *locale.Resolver
	CORS       *config.CORSConfig
	AdminToken string
	// MediaPath is the URL prefix of local uploads, "/uploads" when empty.
	MediaPath  string
}

// Register configures the site pages and the API routes.
func Register(r *server.Hertz, h Handlers, opts Options) {
	r.GET("/ping", handler.Ping)
	r.GET("/assets/*filepath", h.Asset.Serve)
	if h.Media != nil {
		base := strings.TrimRight(opts.MediaPath, "/")
		if base == "" {
			base = "/uploads"
		}
		r.GET(base+"/*filepath", h.Media.Serve)
	}

	api := r.Group("/api", middleware.CORS(opts.CORS))
	// Preflights end in the CORS middleware.
	api.OPTIONS("/*path", func(context.Context, *app.RequestContext) {})
	api.GET("/version", version.GetVersion)
	api.GET("/revalidate", h.Revalidate.Health)
	api.POST("/revalidate", h.Revalidate.Revalidate)
	api.POST("/locale", h.Locale.SetLocale)

	uploads := api.Group("/upload", middleware.RequireAdminToken(opts.AdminToken))
	uploads.POST("", h.Upload.Upload)
	uploads.GET("/files", h.Upload.ListFiles)
	uploads.GET("/files/:id", h.Upload.GetFile)
	uploads.DELETE("/files/:id", h.Upload.DeleteFile)

	localized := middleware.Locale(opts.Resolver)
	pages := r.Group("", localized)
	for _, path := range []string{
		"/",
		"/news", "/news/:id",
		"/research", "/research/:slug",
		"/members", "/members/:slug",
		"/publications",
		"/join", "/join/:slug",
		"/contact",
	} {
		pages.GET(path, h.Page.Show)
	}
	pages.POST("/contact", h.Page.SubmitContact)

	r.NoRoute(localized, h.Page.Show)
}
