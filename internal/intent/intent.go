// Package intent turns an operator-supplied intent string into the
// IntentContext reused for the rest of a run: a closed category, a
// keyword list, exclusion/priority substrings, and an analysis prompt
// fragment (spec §4.3).
package intent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kestrelcrawl/intentcrawl/internal/llm"
	"github.com/kestrelcrawl/intentcrawl/internal/llmjson"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single intent-compilation LLM call.
const DefaultTimeout = 30 * time.Second

// Category is one of the closed tag set an IntentContext may carry.
type Category string

const (
	CategoryContent   Category = "content"
	CategoryData      Category = "data"
	CategoryEmail     Category = "email"
	CategoryPolicy    Category = "policy"
	CategoryContact   Category = "contact"
	CategoryAdmission Category = "admission"
	CategoryResearch  Category = "research"
	CategoryNews      Category = "news"
	CategoryEvent     Category = "event"
	CategoryGeneral   Category = "general"
)

var validCategories = map[Category]bool{
	CategoryContent: true, CategoryData: true, CategoryEmail: true, CategoryPolicy: true,
	CategoryContact: true, CategoryAdmission: true, CategoryResearch: true, CategoryNews: true,
	CategoryEvent: true, CategoryGeneral: true,
}

// Context is the compiled, immutable interpretation of the operator's
// intent, reused verbatim for the rest of the run.
type Context struct {
	Category            Category `json:"category"`
	Keywords             []string `json:"keywords"`
	SearchFocus          string   `json:"search_focus"`
	PrioritySignals      []string `json:"priority_signals"`
	ExcludePatterns      []string `json:"exclude_patterns"`
	AnalysisBackground   string   `json:"analysis_background"`
	FallbackReason       string   `json:"-"`
}

// rawResponse is the shape demanded of the intent-tier LLM.
type rawResponse struct {
	Category           string   `json:"category"`
	Keywords           []string `json:"keywords"`
	SearchFocus        string   `json:"search_focus"`
	PrioritySignals    []string `json:"priority_signals"`
	ExcludePatterns    []string `json:"exclude_patterns"`
	AnalysisBackground string   `json:"analysis_background"`
}

// Compiler holds the LLM client used to interpret intent strings.
type Compiler struct {
	client llm.Client
	logger zerolog.Logger
}

// New constructs a Compiler. client may be a llm.NullClient in
// configurations with no LLM backend; the rule-based fallback covers that
// case like any other failure.
func New(client llm.Client, logger zerolog.Logger) *Compiler {
	return &Compiler{client: client, logger: logger.With().Str("component", "intent").Logger()}
}

// Compile converts intentText and startURL into a Context, using the
// intent-tier LLM when it succeeds and a deterministic rule-based default
// otherwise. This never fails: a run must never abort on intent-compilation
// failure (spec §4.3).
func (c *Compiler) Compile(ctx context.Context, intentText, startURL string) Context {
	prompt := buildPrompt(intentText, startURL)

	resp, err := c.client.Generate(ctx, prompt, llm.TierIntent, 0.2, 800, DefaultTimeout)
	if err != nil || !resp.Success {
		reason := "llm_failed"
		if err != nil {
			reason = err.Error()
		} else if resp.Error != "" {
			reason = resp.Error
		}
		c.logger.Warn().Str("reason", reason).Msg("intent compile falling back to rule-based default")
		return ruleBasedDefault(intentText, reason)
	}

	parsed := llmjson.Parse[rawResponse](resp.Content)
	raw, ok := parsed.Unwrap()
	if !ok {
		c.logger.Warn().Str("reason", parsed.Reason()).Msg("intent compile JSON parse failed, falling back")
		return ruleBasedDefault(intentText, parsed.Reason())
	}

	category := Category(strings.ToLower(strings.TrimSpace(raw.Category)))
	if !validCategories[category] {
		c.logger.Warn().Str("category", raw.Category).Msg("intent compile category outside closed set, falling back")
		return ruleBasedDefault(intentText, "invalid_category")
	}
	if len(raw.Keywords) == 0 || strings.TrimSpace(raw.AnalysisBackground) == "" {
		return ruleBasedDefault(intentText, "missing_required_field")
	}

	return Context{
		Category:           category,
		Keywords:           raw.Keywords,
		SearchFocus:        raw.SearchFocus,
		PrioritySignals:    raw.PrioritySignals,
		ExcludePatterns:    raw.ExcludePatterns,
		AnalysisBackground: raw.AnalysisBackground,
	}
}

func buildPrompt(intentText, startURL string) string {
	return fmt.Sprintf(`You are compiling a crawl intent into a structured JSON object.

Intent: %q
Start URL: %q

Return a JSON object with exactly these fields:
- category: one of content, data, email, policy, contact, admission, research, news, event, general
- keywords: 3 to 8 short strings
- search_focus: one sentence paraphrasing the intent
- priority_signals: substrings that raise priority when present in a URL
- exclude_patterns: substrings that should suppress a URL
- analysis_background: a multi-sentence paragraph to reuse in every analysis call

Respond with JSON only.`, intentText, startURL)
}
