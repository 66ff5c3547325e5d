package llm_test

import (
	"context"
	"testing"
	"time"

	"github.com/kestrelcrawl/intentcrawl/internal/llm"
	"github.com/stretchr/testify/require"
)

type countingClient struct {
	calls int
	resp  llm.Response
}

func (c *countingClient) Generate(_ context.Context, _ string, _ llm.Tier, _ float64, _ int, _ time.Duration) (llm.Response, error) {
	c.calls++
	return c.resp, nil
}

func TestCachingClientSkipsRepeatCalls(t *testing.T) {
	inner := &countingClient{resp: llm.Response{Content: "hi", Success: true}}
	client := llm.NewCachingClient(inner)

	for i := 0; i < 3; i++ {
		resp, err := client.Generate(context.Background(), "same prompt", llm.TierFast, 0, 100, time.Second)
		require.NoError(t, err)
		require.Equal(t, "hi", resp.Content)
	}

	require.Equal(t, 1, inner.calls)
}

func TestCachingClientDoesNotCacheFailures(t *testing.T) {
	inner := &countingClient{resp: llm.Response{Success: false, Error: "boom"}}
	client := llm.NewCachingClient(inner)

	client.Generate(context.Background(), "p", llm.TierFast, 0, 100, time.Second)
	client.Generate(context.Background(), "p", llm.TierFast, 0, 100, time.Second)

	require.Equal(t, 2, inner.calls)
}

func TestCachingClientDistinguishesPromptsAndTiers(t *testing.T) {
	inner := &countingClient{resp: llm.Response{Content: "x", Success: true}}
	client := llm.NewCachingClient(inner)

	client.Generate(context.Background(), "p1", llm.TierFast, 0, 100, time.Second)
	client.Generate(context.Background(), "p2", llm.TierFast, 0, 100, time.Second)
	client.Generate(context.Background(), "p1", llm.TierAnalysis, 0, 100, time.Second)

	require.Equal(t, 3, inner.calls)
}

func TestNullClientAlwaysFails(t *testing.T) {
	client := &llm.NullClient{}
	resp, err := client.Generate(context.Background(), "anything", llm.TierIntent, 0, 100, time.Second)
	require.NoError(t, err)
	require.False(t, resp.Success)
}
