package urlkey_test

import (
	"net/url"
	"testing"

	"github.com/kestrelcrawl/intentcrawl/internal/urlkey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalise(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		base     string
		expected string
		ok       bool
	}{
		{
			name:     "lowercases scheme and host",
			raw:      "HTTP://Example.COM/Path",
			expected: "http://example.com/Path",
			ok:       true,
		},
		{
			name:     "strips default http port",
			raw:      "http://example.com:80/path",
			expected: "http://example.com/path",
			ok:       true,
		},
		{
			name:     "strips default https port",
			raw:      "https://example.com:443/path",
			expected: "https://example.com/path",
			ok:       true,
		},
		{
			name:     "keeps non-default port",
			raw:      "http://example.com:8080/path",
			expected: "http://example.com:8080/path",
			ok:       true,
		},
		{
			name:     "strips fragment",
			raw:      "http://example.com/path#section",
			expected: "http://example.com/path",
			ok:       true,
		},
		{
			name:     "preserves query string",
			raw:      "http://example.com/path?a=1&b=2",
			expected: "http://example.com/path?a=1&b=2",
			ok:       true,
		},
		{
			name:     "collapses trailing slash on non-root path",
			raw:      "http://example.com/path/",
			expected: "http://example.com/path",
			ok:       true,
		},
		{
			name:     "keeps root slash",
			raw:      "http://example.com/",
			expected: "http://example.com/",
			ok:       true,
		},
		{
			name:     "promotes scheme-relative to https",
			raw:      "//example.com/path",
			expected: "https://example.com/path",
			ok:       true,
		},
		{
			name: "resolves relative against base",
			raw:  "/other",
			base: "http://example.com/path/",
			expected: "http://example.com/other",
			ok:       true,
		},
		{
			name: "rejects non-http(s) scheme",
			raw:  "ftp://example.com/path",
			ok:   false,
		},
		{
			name: "rejects missing host",
			raw:  "http:///path",
			ok:   false,
		},
		{
			name: "rejects empty string",
			raw:  "",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var base *url.URL
			if tt.base != "" {
				parsed, err := url.Parse(tt.base)
				require.NoError(t, err)
				base = parsed
			}

			got, ok := urlkey.Normalise(tt.raw, base)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestNormalise_Idempotent(t *testing.T) {
	once, ok := urlkey.Normalise("HTTP://Example.COM:80/Path/?x=1#frag", nil)
	require.True(t, ok)

	twice, ok := urlkey.Normalise(once, nil)
	require.True(t, ok)

	assert.Equal(t, once, twice)
}

func TestKey_DeterministicAndDistinct(t *testing.T) {
	k1 := urlkey.Key("http://example.com/a")
	k2 := urlkey.Key("http://example.com/a")
	k3 := urlkey.Key("http://example.com/b")

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.Len(t, k1, 32)
}

func TestIsAllowed(t *testing.T) {
	tests := []struct {
		name       string
		normalised string
		policy     urlkey.Policy
		allowed    bool
		reason     string
	}{
		{
			name:       "no restrictions allows everything",
			normalised: "http://example.com/page",
			policy:     urlkey.NewPolicy(nil, nil),
			allowed:    true,
		},
		{
			name:       "allowed domain passes",
			normalised: "http://example.com/page",
			policy:     urlkey.NewPolicy([]string{"example.com"}, nil),
			allowed:    true,
		},
		{
			name:       "subdomain of allowed domain passes",
			normalised: "http://docs.example.com/page",
			policy:     urlkey.NewPolicy([]string{"example.com"}, nil),
			allowed:    true,
		},
		{
			name:       "other domain rejected",
			normalised: "http://other.com/page",
			policy:     urlkey.NewPolicy([]string{"example.com"}, nil),
			allowed:    false,
			reason:     "domain_not_allowed",
		},
		{
			name:       "exclude pattern rejected",
			normalised: "http://example.com/admin/login",
			policy:     urlkey.NewPolicy(nil, []string{"/admin/"}),
			allowed:    false,
			reason:     "exclude_pattern_matched",
		},
		{
			name:       "binary asset extension rejected",
			normalised: "http://example.com/file.pdf",
			policy:     urlkey.NewPolicy(nil, nil),
			allowed:    false,
			reason:     "binary_asset_extension",
		},
		{
			name:       "image extension rejected",
			normalised: "http://example.com/image.PNG",
			policy:     urlkey.NewPolicy(nil, nil),
			allowed:    false,
			reason:     "binary_asset_extension",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed, reason := urlkey.IsAllowed(tt.normalised, tt.policy)
			assert.Equal(t, tt.allowed, allowed)
			if !tt.allowed {
				assert.Equal(t, tt.reason, reason)
			}
		})
	}
}
