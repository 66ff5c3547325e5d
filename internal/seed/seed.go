// Package seed turns a compiled IntentContext into the frontier's initial
// set of URLs by querying pluggable search providers with fallback (spec
// §4.4).
package seed

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/kestrelcrawl/intentcrawl/internal/intent"
	"github.com/kestrelcrawl/intentcrawl/internal/search"
	"github.com/kestrelcrawl/intentcrawl/internal/urlkey"
	"github.com/rs/zerolog"
)

// Source is the provenance of a seed URL.
type Source string

const (
	SourceOriginal       Source = "original"
	SourceGoogle         Source = "google"
	SourceBing           Source = "bing"
	SourceDuckDuckGoAPI  Source = "duckduckgo_api"
	SourceDuckDuckGoHTML Source = "duckduckgo_html"
)

// providerPriority ranks providers for the dedup sort, compared before
// rank; lower is better. Mirrors the fallback order in spec §4.4.
var providerPriority = map[Source]int{
	SourceOriginal:       0,
	SourceDuckDuckGoAPI:  1,
	SourceBing:           2,
	SourceDuckDuckGoHTML: 3,
	SourceGoogle:         4,
}

// URL is one seed for the frontier.
type URL struct {
	URL            string  `json:"url"`
	Title          string  `json:"title"`
	Snippet        string  `json:"snippet"`
	Source         Source  `json:"source"`
	Rank           int     `json:"rank"`
	RelevanceScore float64 `json:"relevance_score"`
}

// fallbackOrder is the provider chain tried after the configured primary,
// per spec §4.4, skipping whichever entry is the primary itself.
var fallbackOrder = []string{"duckduckgo_api", "bing", "duckduckgo_html", "google"}

// Generator produces SeedURLs from an IntentContext using a configured
// primary provider with fallback to the rest of fallbackOrder.
type Generator struct {
	providers map[string]search.Provider
	primary   string
	logger    zerolog.Logger
}

// New constructs a Generator. providers maps provider name to
// implementation; any entries missing from fallbackOrder are still usable
// as a primary but are never reached by automatic fallback.
func New(providers map[string]search.Provider, primary string, logger zerolog.Logger) *Generator {
	return &Generator{providers: providers, primary: primary, logger: logger.With().Str("component", "seed").Logger()}
}

// Generate builds the ordered seed list for one run.
func (g *Generator) Generate(ctx context.Context, intentCtx intent.Context, startURL string, includeOriginal, useSiteFilter bool, maxResults int) []URL {
	var seeds []URL

	if includeOriginal {
		seeds = append(seeds, URL{URL: startURL, Source: SourceOriginal, Rank: 0, RelevanceScore: 1.0})
	}

	query := buildQuery(intentCtx.Keywords, startURL, useSiteFilter)

	results, source := g.dispatch(ctx, query, maxResults)
	for _, r := range results {
		seeds = append(seeds, URL{
			URL:            r.URL,
			Title:          r.Title,
			Snippet:        r.Snippet,
			Source:         source,
			Rank:           r.Rank,
			RelevanceScore: relevanceScore(source, r.Rank),
		})
	}

	return dedupeAndSort(seeds)
}

// dispatch tries the primary provider, then falls back through
// fallbackOrder (skipping the primary) until one returns a non-empty
// result set.
func (g *Generator) dispatch(ctx context.Context, query string, maxResults int) ([]search.Result, Source) {
	order := g.order()

	for _, name := range order {
		provider, ok := g.providers[name]
		if !ok {
			continue
		}

		results, err := provider.Search(ctx, query, maxResults)
		if err != nil {
			g.logger.Warn().Err(err).Str("provider", name).Msg("search provider failed")
			continue
		}
		if len(results) == 0 {
			continue
		}
		return results, Source(name)
	}

	return nil, ""
}

func (g *Generator) order() []string {
	order := []string{g.primary}
	for _, name := range fallbackOrder {
		if name != g.primary {
			order = append(order, name)
		}
	}
	return order
}

func buildQuery(keywords []string, startURL string, useSiteFilter bool) string {
	var parts []string
	for _, kw := range keywords {
		if strings.Contains(kw, " ") {
			parts = append(parts, `"`+kw+`"`)
		} else {
			parts = append(parts, kw)
		}
	}
	query := strings.Join(parts, " OR ")

	if useSiteFilter {
		if parsed, err := url.Parse(startURL); err == nil && parsed.Hostname() != "" {
			query += " site:" + parsed.Hostname()
		}
	}

	return query
}

func relevanceScore(source Source, rank int) float64 {
	var score float64
	switch source {
	case SourceDuckDuckGoAPI:
		score = 1.0 - 0.08*float64(rank-1)
	default:
		score = 1.0 - 0.10*float64(rank-1)
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

// dedupeAndSort drops duplicate URL keys (keeping the first occurrence)
// and orders the result with original first, then by (provider priority,
// rank) ascending.
func dedupeAndSort(seeds []URL) []URL {
	seen := make(map[string]bool)
	var deduped []URL
	for _, s := range seeds {
		key := urlkey.Key(s.URL)
		if canonical, ok := urlkey.Normalise(s.URL, nil); ok {
			key = urlkey.Key(canonical)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, s)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		if deduped[i].Source == SourceOriginal {
			return deduped[j].Source != SourceOriginal
		}
		if deduped[j].Source == SourceOriginal {
			return false
		}
		pi, pj := providerPriority[deduped[i].Source], providerPriority[deduped[j].Source]
		if pi != pj {
			return pi < pj
		}
		return deduped[i].Rank < deduped[j].Rank
	})

	return deduped
}
