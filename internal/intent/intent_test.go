package intent_test

import (
	"context"
	"testing"
	"time"

	"github.com/kestrelcrawl/intentcrawl/internal/intent"
	"github.com/kestrelcrawl/intentcrawl/internal/llm"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	resp llm.Response
	err  error
}

func (s stubClient) Generate(_ context.Context, _ string, _ llm.Tier, _ float64, _ int, _ time.Duration) (llm.Response, error) {
	return s.resp, s.err
}

func TestCompileParsesWellFormedLLMResponse(t *testing.T) {
	resp := llm.Response{Success: true, Content: "```json\n{\"category\":\"admission\",\"keywords\":[\"apply\",\"tuition\"],\"search_focus\":\"admission info\",\"priority_signals\":[\"apply\"],\"exclude_patterns\":[\"/login\"],\"analysis_background\":\"We want admission data.\"}\n```"}
	c := intent.New(stubClient{resp: resp}, zerolog.Nop())

	ctx := c.Compile(context.Background(), "find admission info", "https://ex.com")
	require.Equal(t, intent.CategoryAdmission, ctx.Category)
	require.Equal(t, []string{"apply", "tuition"}, ctx.Keywords)
	require.Equal(t, "We want admission data.", ctx.AnalysisBackground)
}

func TestCompileFallsBackOnLLMFailure(t *testing.T) {
	c := intent.New(stubClient{resp: llm.Response{Success: false, Error: "unavailable"}}, zerolog.Nop())

	ctx := c.Compile(context.Background(), "find admission requirements", "https://ex.com")
	require.Equal(t, intent.CategoryAdmission, ctx.Category)
	require.NotEmpty(t, ctx.Keywords)
	require.Contains(t, ctx.AnalysisBackground, "find admission requirements")
}

func TestCompileFallsBackOnInvalidCategory(t *testing.T) {
	resp := llm.Response{Success: true, Content: `{"category":"nonsense","keywords":["x"],"analysis_background":"bg"}`}
	c := intent.New(stubClient{resp: resp}, zerolog.Nop())

	ctx := c.Compile(context.Background(), "general research about cats", "https://ex.com")
	require.NotEqual(t, intent.Category("nonsense"), ctx.Category)
}

func TestCompileFallsBackOnMissingFields(t *testing.T) {
	resp := llm.Response{Success: true, Content: `{"category":"news"}`}
	c := intent.New(stubClient{resp: resp}, zerolog.Nop())

	ctx := c.Compile(context.Background(), "daily news about weather", "https://ex.com")
	require.NotEmpty(t, ctx.AnalysisBackground)
	require.Contains(t, ctx.AnalysisBackground, "daily news about weather")
}

func TestRuleBasedDefaultCategorizesByKeyword(t *testing.T) {
	c := intent.New(stubClient{resp: llm.Response{Success: false}}, zerolog.Nop())

	ctx := c.Compile(context.Background(), "I want to contact the office by phone", "https://ex.com")
	require.Equal(t, intent.CategoryContact, ctx.Category)
}

func TestRuleBasedDefaultFiltersStopwordsAndShortTokens(t *testing.T) {
	c := intent.New(stubClient{resp: llm.Response{Success: false}}, zerolog.Nop())

	ctx := c.Compile(context.Background(), "find information about the admission process for the school", "https://ex.com")
	for _, kw := range ctx.Keywords {
		require.NotEqual(t, "the", kw)
		require.NotEqual(t, "for", kw)
	}
}
