package analysis

import (
	"fmt"
	"strings"

	"github.com/kestrelcrawl/intentcrawl/internal/extractor"
	"github.com/kestrelcrawl/intentcrawl/internal/intent"
)

// keywordFallback scores text by the fraction of keywords it contains
// (case-insensitive substring match), used by QuickRelevance whenever the
// fast-tier LLM call fails.
func keywordFallback(text string, keywords []string) (float64, []string) {
	if len(keywords) == 0 {
		return 0, nil
	}

	lower := strings.ToLower(text)
	var matched []string
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}

	return float64(len(matched)) / float64(len(keywords)), matched
}

// ruleBasedAnalysis builds a deterministic Result when the analysis-tier
// LLM call fails or its output cannot be parsed (spec §4.6 stage A):
// score is the fraction of keywords present in title+body; prioritized
// URLs come from outbound links matching at least one keyword in URL or
// anchor text.
func ruleBasedAnalysis(content extractor.ExtractedContent, intentCtx intent.Context, reason string) Result {
	combined := strings.ToLower(content.Title + " " + content.Text)

	score, matched := keywordFallback(combined, intentCtx.Keywords)

	findings := []string{fmt.Sprintf("keyword matches: %s", strings.Join(matched, ", "))}

	return Result{
		RelevanceScore:  score,
		KeyFindings:     findings,
		ExtractedData:   map[string]string{},
		Summary:         "",
		PrioritizedURLs: PrioritizeLinksByKeyword(content, intentCtx),
		FallbackReason:  reason,
	}
}

// PrioritizeLinksByKeyword classifies outbound links by keyword match in
// URL or anchor text (>=2 matches -> priority 1, 1 match -> priority 2,
// 0 matches are dropped). Shared by the rule-based analysis fallback and
// by the pipeline's quick-gate-skip discovery path (spec §4.6: "an item
// below the gate still produces outbound URLs via the fallback path").
func PrioritizeLinksByKeyword(content extractor.ExtractedContent, intentCtx intent.Context) []PrioritizedURL {
	var prioritized []PrioritizedURL
	for _, link := range content.Links {
		count := countKeywordMatches(strings.ToLower(link.URL+" "+link.Text), intentCtx.Keywords)
		if count == 0 {
			continue
		}
		priority := 2
		if count >= 2 {
			priority = 1
		}
		prioritized = append(prioritized, PrioritizedURL{
			URL:      link.URL,
			Priority: priority,
			Reason:   "keyword match fallback",
		})
	}
	return prioritized
}

func countKeywordMatches(text string, keywords []string) int {
	count := 0
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			count++
		}
	}
	return count
}
