// Package revalidate maps CMS webhook events onto cached site paths and drops them.
package revalidate

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// AllModels is reported when an event names no known model.
const AllModels = "all"

// DefaultPaths are invalidated when the event names no known model.
var DefaultPaths = []string{"/", "/news", "/research", "/members", "/publications", "/join", "/contact"}

var revalidatedPaths = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "lab_portal_revalidated_paths_total",
	Help: "Cached site paths invalidated by the revalidation webhook.",
}, []string{"outcome"})

// Entry identifies the changed record. DocumentID is set by Strapi v5, whose
// detail pages are addressed by it.
type Entry struct {
	ID         string
	DocumentID string
	Slug       string
}

type pathFunc func(Entry) []string

var modelPaths = map[string]pathFunc{
	"news": func(e Entry) []string {
		paths := withDetail([]string{"/", "/news"}, "/news/", e.ID)
		if e.DocumentID != e.ID {
			paths = withDetail(paths, "/news/", e.DocumentID)
		}
		return paths
	},
	"research-area": func(e Entry) []string {
		return withDetail([]string{"/", "/research"}, "/research/", e.Slug)
	},
	"member": func(e Entry) []string {
		return withDetail([]string{"/members"}, "/members/", e.Slug)
	},
	"publication": fixed("/publications"),
	"patent":      fixed("/publications"),
	"award":       fixed("/publications"),
	"opening": func(e Entry) []string {
		return withDetail([]string{"/join"}, "/join/", e.Slug)
	},
	"contact-page": fixed("/contact"),
}

func fixed(paths ...string) pathFunc {
	return func(Entry) []string { return paths }
}

func withDetail(paths []string, prefix, id string) []string {
	if id == "" {
		return paths
	}
	return append(paths, prefix+id)
}

// SupportedModels lists the model names with a dedicated path set.
func SupportedModels() []string {
	models := make([]string, 0, len(modelPaths))
	for m := range modelPaths {
		models = append(models, m)
	}
	sort.Strings(models)
	return models
}

// Event is a parsed webhook body.
type Event struct {
	Model string
	Entry Entry
}

// ParseEvent reads the optional {model, entry:{id, documentId, slug}} body. Empty or
// malformed bodies yield the zero event.
func ParseEvent(body []byte) Event {
	if len(strings.TrimSpace(string(body))) == 0 || !gjson.ValidBytes(body) {
		return Event{}
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return Event{}
	}
	return Event{
		Model: doc.Get("model").String(),
		Entry: Entry{
			ID:         doc.Get("entry.id").String(),
			DocumentID: doc.Get("entry.documentId").String(),
			Slug:       doc.Get("entry.slug").String(),
		},
	}
}

// Paths returns the site paths affected by ev.
func Paths(ev Event) []string {
	if fn, ok := modelPaths[ev.Model]; ok {
		return fn(ev.Entry)
	}
	return append([]string(nil), DefaultPaths...)
}

// Invalidator drops every cached rendering of a path.
type Invalidator interface {
	Invalidate(ctx context.Context, path string) error
}

// Result is the manifest returned to the webhook caller.
type Result struct {
	Success     bool     `json:"success"`
	Revalidated bool     `json:"revalidated"`
	Paths       []string `json:"paths"`
	Timestamp   string   `json:"timestamp"`
	Model       string   `json:"model"`
	Message     string   `json:"message"`
}

// Service runs revalidation against the page cache.
type Service struct {
	cache Invalidator
	log   *zap.Logger
	now   func() time.Time
}

func NewService(cache Invalidator, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{cache: cache, log: log.Named("revalidate"), now: time.Now}
}

// Revalidate invalidates each affected path on its own. Failed paths are
// logged and left out of the manifest; they never abort the others.
func (s *Service) Revalidate(ctx context.Context, ev Event) *Result {
	s.log.Info("revalidation requested",
		zap.String("model", ev.Model),
		zap.String("entry_id", ev.Entry.ID),
		zap.String("entry_slug", ev.Entry.Slug))

	done := make([]string, 0, len(DefaultPaths))
	for _, p := range Paths(ev) {
		if err := s.cache.Invalidate(ctx, p); err != nil {
			revalidatedPaths.WithLabelValues("error").Inc()
			s.log.Error("revalidate path failed", zap.String("path", p), zap.Error(err))
			continue
		}
		revalidatedPaths.WithLabelValues("ok").Inc()
		s.log.Debug("path revalidated", zap.String("path", p))
		done = append(done, p)
	}

	model := ev.Model
	if model == "" {
		model = AllModels
	}
	return &Result{
		Success:     true,
		Revalidated: true,
		Paths:       done,
		Timestamp:   s.now().UTC().Format(time.RFC3339),
		Model:       model,
		Message:     fmt.Sprintf("revalidated %d paths", len(done)),
	}
}
