package site

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yi-nology/lab_portal/biz/model/view"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

const (
	layoutFile  = "templates/layout.html"
	contentType = "text/html; charset=utf-8"
)

// Renderer executes the page templates. Each page is parsed together with the
// shared layout into its own set.
type Renderer struct {
	pages    map[string]*template.Template
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
}

// NewRenderer parses every templates/*.html page of fsys except the layout.
func NewRenderer(fsys fs.FS) (*Renderer, error) {
	r := &Renderer{
		pages: map[string]*template.Template{},
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		policy: bluemonday.UGCPolicy(),
	}

	files, err := fs.Glob(fsys, "templates/*.html")
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		name := path.Base(file)
		name = name[:len(name)-len(path.Ext(name))]
		tmpl, err := template.New(path.Base(layoutFile)).
			Funcs(r.funcs()).
			ParseFS(fsys, layoutFile, file)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		r.pages[name] = tmpl
	}
	if len(r.pages) == 0 {
		return nil, fmt.Errorf("no page templates found")
	}
	return r, nil
}

// Render executes page with data into a complete document.
func (r *Renderer) Render(page string, data any) ([]byte, error) {
	tmpl, ok := r.pages[page]
	if !ok {
		return nil, fmt.Errorf("unknown page template %q", page)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", page, err)
	}
	return buf.Bytes(), nil
}

// RichText converts CMS rich text (Markdown, possibly with inline HTML) into
// sanitized HTML.
func (r *Renderer) RichText(src string) template.HTML {
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes()))
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"richText":   r.RichText,
		"formatDate": view.FormatDate,
		"excerpt": func(s string) string {
			return view.Excerpt(s, view.DefaultTruncateLength)
		},
		"truncate": view.Truncate,
		"year": func() int {
			return time.Now().Year()
		},
	}
}
