package llm

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
)

// OpenAIClient adapts sashabaranov/go-openai to the Client capability. It
// exists to demonstrate (and let an operator choose) the LLM-backend
// pluggability spec.md §9 calls for alongside AnthropicClient; either
// satisfies the same Client interface and the core never imports a vendor
// SDK type outside this package.
type OpenAIClient struct {
	api           *openai.Client
	logger        zerolog.Logger
	fastModel     string
	intentModel   string
	analysisModel string
}

func NewOpenAIClient(apiKey, fastModel, intentModel, analysisModel string, logger zerolog.Logger) *OpenAIClient {
	return &OpenAIClient{
		api:           openai.NewClient(apiKey),
		logger:        logger,
		fastModel:     fastModel,
		intentModel:   intentModel,
		analysisModel: analysisModel,
	}
}

var _ Client = (*OpenAIClient)(nil)

func (c *OpenAIClient) modelFor(tier Tier) string {
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

func (c *OpenAIClient) Generate(ctx context.Context, prompt string, tier Tier, temperature float64, maxTokens int, timeout time.Duration) (Response, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	model := c.modelFor(tier)

	resp, err := c.api.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       model,
		Temperature: float32(temperature),
		MaxTokens:   maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("tier", string(tier)).Str("model", model).Msg("openai generate failed")
		return Response{Success: false, Error: err.Error()}, nil
	}

	if len(resp.Choices) == 0 {
		return Response{Success: false, Error: "empty response from openai"}, nil
	}

	return Response{Content: strings.TrimSpace(resp.Choices[0].Message.Content), Success: true}, nil
}
