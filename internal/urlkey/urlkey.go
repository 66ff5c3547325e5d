// Package urlkey reduces a URL to the canonical form and 128-bit identity
// hash the rest of the core treats as a page's address, and applies the
// domain/pattern/asset-extension filter that decides whether a URL is
// eligible for the frontier at all.
package urlkey

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strings"
)

// Normalise resolves url against base (if given), promotes scheme-relative
// URLs to https, lowercases scheme and host, strips the fragment and a
// default port, and collapses a lone trailing slash on a non-root path. The
// query string is preserved: two URLs that differ only in query are distinct
// pages. It returns ("", false) when the result has no scheme/host or the
// scheme is not http/https.
func Normalise(rawURL string, base *url.URL) (string, bool) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", false
	}

	if strings.HasPrefix(trimmed, "//") {
		trimmed = "https:" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", false
	}

	if base != nil && !parsed.IsAbs() {
		parsed = base.ResolveReference(parsed)
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}

	scheme := lowerASCII(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", false
	}
	parsed.Scheme = scheme
	parsed.Host = lowerASCII(parsed.Host)

	if host, port := parsed.Hostname(), parsed.Port(); port != "" {
		if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
			parsed.Host = host
		}
	}

	parsed.Fragment = ""
	parsed.RawFragment = ""

	if len(parsed.Path) > 1 {
		parsed.Path = stripTrailingSlash(parsed.Path)
	}

	return parsed.String(), true
}

// Key returns the MD5 hex digest of the canonical form. Collision handling
// is not required at this scale.
func Key(canonical string) string {
	sum := md5.Sum([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// IsAllowed reports whether a normalised URL passes policy: the host must
// match an AllowedDomains entry when that list is non-empty, the URL must
// contain no ExcludePatterns substring, and the path must not end in a
// binary-asset extension. The returned reason is empty on acceptance.
func IsAllowed(normalised string, policy Policy) (bool, string) {
	parsed, err := url.Parse(normalised)
	if err != nil {
		return false, "unparseable_url"
	}

	if len(policy.AllowedDomains) > 0 {
		host := lowerASCII(parsed.Hostname())
		matched := false
		for _, domain := range policy.AllowedDomains {
			d := lowerASCII(domain)
			if host == d || strings.HasSuffix(host, "."+d) {
				matched = true
				break
			}
		}
		if !matched {
			return false, "domain_not_allowed"
		}
	}

	for _, pattern := range policy.ExcludePatterns {
		if pattern != "" && strings.Contains(normalised, pattern) {
			return false, "exclude_pattern_matched"
		}
	}

	lowerPath := lowerASCII(parsed.Path)
	for _, ext := range binaryAssetExtensions {
		if strings.HasSuffix(lowerPath, ext) {
			return false, "binary_asset_extension"
		}
	}

	return true, ""
}

func lowerASCII(s string) string {
	needsLower := false
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}
	b := make([]byte, len(s))
	copy(b, s)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

func stripTrailingSlash(path string) string {
	for len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}
