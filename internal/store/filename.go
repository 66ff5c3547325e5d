package store

import (
	"net/url"
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// sanitizeName lowercases base, replaces runs of non-alphanumeric
// characters with a single underscore, trims leading/trailing underscores,
// and truncates to 50 characters (spec §4.2's filename-generation rule).
func sanitizeName(base string) string {
	lower := strings.ToLower(strings.TrimSpace(base))
	collapsed := nonAlnum.ReplaceAllString(lower, "_")
	trimmed := strings.Trim(collapsed, "_")
	if trimmed == "" {
		trimmed = "page"
	}
	if len(trimmed) > 50 {
		trimmed = strings.Trim(trimmed[:50], "_")
	}
	return trimmed
}

// lastPathSegment extracts the final non-empty path segment of rawURL, or
// the hostname if the path is empty or root.
func lastPathSegment(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "page"
	}

	path := strings.Trim(parsed.Path, "/")
	if path == "" {
		if parsed.Hostname() != "" {
			return parsed.Hostname()
		}
		return "page"
	}

	segments := strings.Split(path, "/")
	last := segments[len(segments)-1]
	last = strings.TrimSuffix(last, ".html")
	last = strings.TrimSuffix(last, ".htm")
	if last == "" {
		return "page"
	}
	return last
}
