package llm

import (
	"context"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"
)

// AnthropicClient adapts anthropic-sdk-go to the Client capability,
// resolving each Tier to one of three configured model names (fed by the
// CLI's --small-model/--large-model flags; fast and intent share the small
// model, analysis uses the large one, matching the teacher pack's
// fast/heavy split).
type AnthropicClient struct {
	api            anthropic.Client
	logger         zerolog.Logger
	fastModel      string
	intentModel    string
	analysisModel  string
}

// NewAnthropicClient builds a client. fastModel/intentModel feed the cheap
// tiers; analysisModel feeds the heavy one.
func NewAnthropicClient(apiKey, fastModel, intentModel, analysisModel string, logger zerolog.Logger) *AnthropicClient {
	return &AnthropicClient{
		api:           anthropic.NewClient(option.WithAPIKey(apiKey)),
		logger:        logger,
		fastModel:     fastModel,
		intentModel:   intentModel,
		analysisModel: analysisModel,
	}
}

var _ Client = (*AnthropicClient)(nil)

func (c *AnthropicClient) modelFor(tier Tier) string {
	switch tier {
	case TierFast:
		return c.fastModel
	case TierIntent:
		return c.intentModel
	case TierAnalysis:
		return c.analysisModel
	default:
		return c.fastModel
	}
}

func (c *AnthropicClient) Generate(ctx context.Context, prompt string, tier Tier, _ float64, maxTokens int, timeout time.Duration) (Response, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	model := c.modelFor(tier)

	resp, err := c.api.Messages.New(callCtx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("tier", string(tier)).Str("model", model).Msg("anthropic generate failed")
		return Response{Success: false, Error: err.Error()}, nil
	}

	return Response{Content: strings.TrimSpace(extractText(resp)), Success: true}, nil
}

func extractText(resp *anthropic.Message) string {
	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}
