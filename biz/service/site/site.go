// Package site renders the public pages of the lab website from CMS content.
package site

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/yi-nology/lab_portal/biz/model/view"
	"github.com/yi-nology/lab_portal/pkg/cms"
	"github.com/yi-nology/lab_portal/pkg/locale"
	"github.com/yi-nology/lab_portal/pkg/pagecache"
	"go.uber.org/zap"
)

// ErrPageNotFound is returned for unknown paths and missing detail records.
var ErrPageNotFound = errors.New("page not found")

var renderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "lab_portal_site_render_duration_seconds",
	Help:    "Time spent building a page on a cache miss.",
	Buckets: prometheus.DefBuckets,
}, []string{"page"})

// CMS is the content API the pages are built from.
type CMS interface {
	Find(ctx context.Context, collection string, q cms.Query) (*cms.Response, error)
	FindOne(ctx context.Context, collection, documentID string, q cms.Query) (cms.Document, error)
	FindFirst(ctx context.Context, collection string, q cms.Query) (cms.Document, error)
	FindSingle(ctx context.Context, singleType string, q cms.Query) (cms.Document, error)
	Create(ctx context.Context, collection string, payload any) (cms.Document, error)
	Origin() string
}

// Service builds, caches and serves rendered pages.
type Service struct {
	cms       CMS
	transform *view.Transformer
	renderer  *Renderer
	cache     pagecache.Cache
	log       *zap.Logger
}

func NewService(client CMS, renderer *Renderer, cache pagecache.Cache, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		cms:       client,
		transform: view.NewTransformer(client.Origin()),
		renderer:  renderer,
		cache:     cache,
		log:       log.Named("site"),
	}
}

// Layout is the data every template receives.
type Layout struct {
	Locale  string
	Locales []locale.Info
	Path    string
	Section string
	Title   string
	T       Messages
	// Unavailable marks a page built while the CMS failed; such pages are not cached.
	Unavailable bool
	Body        any
}

// Page returns the rendered page of path for loc, from cache when present.
func (s *Service) Page(ctx context.Context, loc, path string) (*pagecache.Page, error) {
	path = pagecache.NormalizePath(path)
	if page, ok := s.cache.Get(ctx, loc, path); ok {
		return page, nil
	}

	build, args, ok := s.route(path)
	if !ok {
		return nil, ErrPageNotFound
	}

	start := time.Now()
	layout := &Layout{
		Locale:  loc,
		Locales: locale.Supported,
		Path:    path,
		Section: section(path),
		T:       MessagesFor(loc),
	}
	name, err := build(ctx, layout, args)
	if err != nil {
		return nil, err
	}
	body, err := s.renderer.Render(name, layout)
	if err != nil {
		s.log.Error("render page failed", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	renderDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	page := &pagecache.Page{ContentType: contentType, Body: body}
	if !layout.Unavailable {
		s.cache.Set(ctx, loc, path, page)
	}
	return page, nil
}

// NotFound renders the 404 page.
func (s *Service) NotFound(loc, path string) *pagecache.Page {
	t := MessagesFor(loc)
	layout := &Layout{
		Locale:  loc,
		Locales: locale.Supported,
		Path:    path,
		Title:   t["not_found"],
		T:       t,
	}
	body, err := s.renderer.Render("notfound", layout)
	if err != nil {
		s.log.Error("render not found page failed", zap.Error(err))
		body = []byte(t["not_found"])
	}
	return &pagecache.Page{ContentType: contentType, Body: body}
}

type builder func(ctx context.Context, l *Layout, arg string) (string, error)

// route maps a normalized path onto its page builder and detail argument.
func (s *Service) route(path string) (builder, string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if path == "/" {
		return s.home, "", true
	}
	list := map[string]builder{
		"news":         s.newsList,
		"research":     s.researchList,
		"members":      s.memberList,
		"publications": s.publications,
		"join":         s.join,
		"contact":      s.contact,
	}
	detail := map[string]builder{
		"news":     s.newsDetail,
		"research": s.researchDetail,
		"members":  s.memberDetail,
		"join":     s.openingDetail,
	}
	switch len(parts) {
	case 1:
		b, ok := list[parts[0]]
		return b, "", ok
	case 2:
		b, ok := detail[parts[0]]
		return b, parts[1], ok
	}
	return nil, "", false
}

func section(path string) string {
	parts := strings.SplitN(strings.Trim(path, "/"), "/", 2)
	if parts[0] == "" {
		return "home"
	}
	return parts[0]
}
