// Package locale maps cookies and Accept-Language headers onto the two locales
// the CMS publishes content in.
package locale

import (
	"strings"

	"golang.org/x/text/language"
)

const (
	Chinese = "zh-CN"
	English = "en"

	// CookieName is the cookie holding the visitor's locale choice.
	CookieName = "NEXT_LOCALE"
	// CookieMaxAge is thirty days in seconds.
	CookieMaxAge = 30 * 24 * 60 * 60
)

// Info describes a supported locale for the language switcher.
type Info struct {
	Code        string
	Name        string
	EnglishName string
}

// Supported lists the locales in switcher order.
var Supported = []Info{
	{Code: Chinese, Name: "简体中文", EnglishName: "Simplified Chinese"},
	{Code: English, Name: "English", EnglishName: "English"},
}

// IsSupported reports whether tag names a Chinese or English variant.
func IsSupported(tag string) bool {
	t, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(tag), "_", "-"))
	if err != nil {
		return false
	}
	base, conf := t.Base()
	if conf != language.Exact {
		return false
	}
	return base.String() == "zh" || base.String() == "en"
}

// Resolver normalizes locale inputs against a configured default.
type Resolver struct {
	fallback string
}

// NewResolver returns a resolver falling back to defaultLocale. The default is
// itself normalized; an empty default means Chinese.
func NewResolver(defaultLocale string) *Resolver {
	fallback := Chinese
	if strings.TrimSpace(defaultLocale) != "" {
		fallback = normalize(defaultLocale)
	}
	return &Resolver{fallback: fallback}
}

// Default returns the fallback locale.
func (r *Resolver) Default() string {
	return r.fallback
}

// Normalize maps every Chinese variant to zh-CN and every other tag to en.
// An empty tag yields the default.
func (r *Resolver) Normalize(tag string) string {
	if strings.TrimSpace(tag) == "" {
		return r.fallback
	}
	return normalize(tag)
}

// FromAcceptLanguage normalizes the highest weighted language of an
// Accept-Language header. Empty or unparsable headers yield the default.
func (r *Resolver) FromAcceptLanguage(header string) string {
	if strings.TrimSpace(header) == "" {
		return r.fallback
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil {
		return r.fallback
	}
	for _, tag := range tags {
		if tag == language.Und {
			continue
		}
		return normalize(tag.String())
	}
	return r.fallback
}

// Resolve picks the locale of a request: a supported cookie value first, then
// the Accept-Language header, then the default.
func (r *Resolver) Resolve(cookie, acceptLanguage string) string {
	if IsSupported(cookie) {
		return normalize(cookie)
	}
	return r.FromAcceptLanguage(acceptLanguage)
}

func normalize(tag string) string {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(tag)), "_", "-")
	if strings.HasPrefix(normalized, "zh") {
		return Chinese
	}
	return English
}
