package validator

import (
	"regexp"
	"strings"
)

// slugRegexp matches CMS slugs and document ids: lowercase letters, numbers,
// underscores and hyphens, 1-128 characters.
var slugRegexp = regexp.MustCompile(`^[a-z0-9_-]{1,128}$`)

// SanitizeSlug trims whitespace, lower-cases and validates a route slug.
// Returns the sanitized slug and a boolean indicating if it's valid.
func SanitizeSlug(slug string) (string, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(slug))
	if trimmed == "" {
		return "", false
	}
	return trimmed, slugRegexp.MatchString(trimmed)
}
