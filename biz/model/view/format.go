package view

import (
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yi-nology/lab_portal/pkg/locale"
)

// DefaultTruncateLength is the excerpt length of list pages.
const DefaultTruncateLength = 200

var (
	dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}
	stripPolicy = bluemonday.StrictPolicy()
)

// FormatDate renders an ISO date as "2024年3月5日" for Chinese and
// "March 5, 2024" otherwise. Unparsable input is returned as is.
func FormatDate(s, loc string) string {
	if s == "" {
		return ""
	}
	var (
		t   time.Time
		err error
	)
	for _, layout := range dateLayouts {
		if t, err = time.Parse(layout, s); err == nil {
			break
		}
	}
	if err != nil {
		return s
	}
	if loc == locale.Chinese {
		return fmt.Sprintf("%d年%d月%d日", t.Year(), int(t.Month()), t.Day())
	}
	return t.Format("January 2, 2006")
}

// StripHTML removes every tag and returns plain text.
func StripHTML(s string) string {
	return strings.TrimSpace(html.UnescapeString(stripPolicy.Sanitize(s)))
}

// Truncate shortens s to n runes and appends "..." when it was cut.
func Truncate(s string, n int) string {
	if n <= 0 {
		n = DefaultTruncateLength
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

// Excerpt is the plain-text preview of rich content.
func Excerpt(content string, n int) string {
	return Truncate(StripHTML(content), n)
}
