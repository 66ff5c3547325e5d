package pipeline

import (
	"context"
	"net/url"
	"strings"

	"github.com/kestrelcrawl/intentcrawl/internal/analysis"
	"github.com/kestrelcrawl/intentcrawl/internal/extractor"
	"github.com/kestrelcrawl/intentcrawl/internal/frontier"
	"github.com/kestrelcrawl/intentcrawl/internal/urlkey"
)

// linkTypeOrder is the substring match order used to classify a discovered
// URL's link_type, mirroring the frontier's type_bonus table (most specific
// categories first, "general" as the catch-all).
var linkTypeOrder = []string{
	"admission", "international", "financial", "academic", "research", "faculty", "news", "navigation",
}

func classifyLinkType(rawURL string) string {
	lower := strings.ToLower(rawURL)
	for _, t := range linkTypeOrder {
		if strings.Contains(lower, t) {
			return t
		}
	}
	return "general"
}

// normalisePriority maps an analyser priority (1=high, 2=medium, 3=low)
// onto the [0,1] ai_score frontier.Add expects.
func normalisePriority(priority int) float64 {
	switch priority {
	case 1:
		return 1.0
	case 2:
		return 0.6
	case 3:
		return 0.3
	default:
		return 0
	}
}

func priorityToBasePriority(priority int) frontier.BasePriority {
	switch priority {
	case 1:
		return frontier.PriorityHigh
	case 2:
		return frontier.PriorityMedium
	default:
		return frontier.PriorityLow
	}
}

// discover implements stage D: pushing every analyser-recommended URL, plus
// up to p.opts.ExplorationLinks random unvisited internal links the
// analyser didn't recommend, each with ai_score=0 and reason "exploration".
func (p *Pipeline) discover(_ context.Context, item *frontier.Item, base *url.URL, content extractor.ExtractedContent, prioritized []analysis.PrioritizedURL) []string {
	var discovered []string
	recommended := make(map[string]bool, len(prioritized))

	for _, pu := range prioritized {
		canonical, ok := urlkey.Normalise(pu.URL, base)
		if !ok {
			continue
		}
		recommended[canonical] = true

		linkType := classifyLinkType(canonical)
		pushed := p.frontier.Add(canonical, *base, priorityToBasePriority(pu.Priority), item.Depth+1, item.URL, normalisePriority(pu.Priority), linkType, pu.Reason)
		if pushed {
			discovered = append(discovered, canonical)
		}
	}

	var candidates []string
	for _, l := range content.Links {
		if !l.IsInternal {
			continue
		}
		canonical, ok := urlkey.Normalise(l.URL, base)
		if !ok || recommended[canonical] {
			continue
		}
		candidates = append(candidates, canonical)
	}

	p.rng.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })

	limit := p.opts.ExplorationLinks
	if limit > len(candidates) {
		limit = len(candidates)
	}
	for _, canonical := range candidates[:limit] {
		linkType := classifyLinkType(canonical)
		pushed := p.frontier.Add(canonical, *base, frontier.PriorityLow, item.Depth+1, item.URL, 0, linkType, "exploration")
		if pushed {
			discovered = append(discovered, canonical)
		}
	}

	return discovered
}
