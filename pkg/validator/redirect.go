package validator

import (
	"net/url"
	"strings"
)

// LocalRedirect returns target when it is a path on this site and "/" otherwise.
// Absolute, scheme-relative and backslash URLs are rejected.
func LocalRedirect(target string) string {
	target = strings.TrimSpace(target)
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, "\\") {
		return "/"
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return target
}
