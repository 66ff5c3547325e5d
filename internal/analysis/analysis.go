// Package analysis is the content analyser (C7): a quick relevance gate
// and a deep-analysis call, both pure with respect to their inputs, the
// analyser itself holding only an LLM client reference (spec §4.7).
package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kestrelcrawl/intentcrawl/internal/extractor"
	"github.com/kestrelcrawl/intentcrawl/internal/intent"
	"github.com/kestrelcrawl/intentcrawl/internal/llm"
	"github.com/kestrelcrawl/intentcrawl/internal/llmjson"
	"github.com/kestrelcrawl/intentcrawl/internal/metrics"
)

// PrioritizedURL is one outbound link the analyser recommends following.
type PrioritizedURL struct {
	URL      string `json:"url"`
	Priority int    `json:"priority"`
	Reason   string `json:"reason"`
}

// Result is the deep-analysis output (spec §4.6 stage A).
type Result struct {
	RelevanceScore  float64           `json:"relevance_score"`
	KeyFindings     []string          `json:"key_findings"`
	ExtractedData   map[string]string `json:"extracted_data"`
	Summary         string            `json:"summary"`
	PrioritizedURLs []PrioritizedURL  `json:"prioritized_urls"`
	FallbackReason  string            `json:"-"`
}

// rawAnalysis is the JSON contract demanded of the analysis-tier LLM.
type rawAnalysis struct {
	RelevanceScore  float64           `json:"relevance_score"`
	KeyFindings     []string          `json:"key_findings"`
	ExtractedData   map[string]string `json:"extracted_data"`
	Summary         string            `json:"summary"`
	PrioritizedURLs []PrioritizedURL  `json:"prioritized_urls"`
}

// Analyser holds only an LLM client reference, matching spec §4.7. metrics
// is optional observability, never consulted to make decisions.
type Analyser struct {
	client  llm.Client
	metrics *metrics.Registry
}

func New(client llm.Client) *Analyser {
	return &Analyser{client: client}
}

// WithMetrics attaches a metrics registry whose LLMCallDuration histogram
// is observed on every Generate call this analyser makes. Returns the
// receiver so it composes with New at the call site.
func (a *Analyser) WithMetrics(m *metrics.Registry) *Analyser {
	a.metrics = m
	return a
}

func (a *Analyser) observeLLMCall(tier llm.Tier, start time.Time) {
	if a.metrics == nil {
		return
	}
	a.metrics.ObserveLLMCall(string(tier), time.Since(start))
}

// QuickRelevance invokes the fast-tier LLM with a short preview; on
// failure it falls back to keyword substring counting (spec §4.6 stage G).
func (a *Analyser) QuickRelevance(ctx context.Context, title, preview string, intentCtx intent.Context) (float64, []string) {
	prompt := fmt.Sprintf(`Title: %s
Preview: %s
Keywords: %s
Focus: %s

On a scale of 0 to 1, how relevant is this page? Respond with a JSON object: {"score": <number>, "matched_keywords": [...]}.`,
		title, preview, strings.Join(intentCtx.Keywords, ", "), intentCtx.SearchFocus)

	start := time.Now()
	resp, err := a.client.Generate(ctx, prompt, llm.TierFast, 0.0, 200, 15*time.Second)
	a.observeLLMCall(llm.TierFast, start)
	if err == nil && resp.Success {
		type quickResp struct {
			Score           float64  `json:"score"`
			MatchedKeywords []string `json:"matched_keywords"`
		}
		parsed := llmjson.Parse[quickResp](resp.Content)
		if value, ok := parsed.Unwrap(); ok {
			return clamp01(value.Score), value.MatchedKeywords
		}
	}

	return keywordFallback(title+" "+preview, intentCtx.Keywords)
}

// Analyse invokes the analysis-tier LLM with the full extracted content
// and outbound links; on any parse failure it falls back to a rule-based
// keyword scoring (spec §4.6 stage A).
func (a *Analyser) Analyse(ctx context.Context, content extractor.ExtractedContent, intentCtx intent.Context, baseURL string) Result {
	body := content.Text
	if len(body) > 3000 {
		body = body[:3000]
	}

	prompt := buildAnalysisPrompt(intentCtx, content.Title, baseURL, body, content.Links)

	start := time.Now()
	resp, err := a.client.Generate(ctx, prompt, llm.TierAnalysis, 0.2, 1500, 45*time.Second)
	a.observeLLMCall(llm.TierAnalysis, start)
	if err != nil || !resp.Success {
		reason := "llm_failed"
		if err != nil {
			reason = err.Error()
		}
		return ruleBasedAnalysis(content, intentCtx, reason)
	}

	parsed := llmjson.Parse[rawAnalysis](resp.Content)
	raw, ok := parsed.Unwrap()
	if !ok {
		return ruleBasedAnalysis(content, intentCtx, parsed.Reason())
	}

	return Result{
		RelevanceScore:  clamp01(raw.RelevanceScore),
		KeyFindings:     raw.KeyFindings,
		ExtractedData:   raw.ExtractedData,
		Summary:         raw.Summary,
		PrioritizedURLs: raw.PrioritizedURLs,
	}
}

func buildAnalysisPrompt(intentCtx intent.Context, title, baseURL, body string, links []extractor.Link) string {
	var linkLines []string
	for i, l := range links {
		if i >= 20 {
			break
		}
		linkLines = append(linkLines, fmt.Sprintf("- %s (%s)", l.URL, l.Text))
	}

	return fmt.Sprintf(`%s

Page title: %s
Page URL: %s
Page content:
%s

Outbound links:
%s

Return a JSON object with: relevance_score (0 to 1), key_findings (array of strings), extracted_data (object), summary (string), prioritized_urls (array of {url, priority (1, 2, or 3), reason}).`,
		intentCtx.AnalysisBackground, title, baseURL, body, strings.Join(linkLines, "\n"))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
