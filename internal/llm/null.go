package llm

import (
	"context"
	"time"
)

// NullClient always reports failure without making a network call. It is
// the test double scenario 3 (spec §8, "LLM unavailable") is built around:
// every caller (intent compiler, quick gate, analyser) must degrade to its
// rule-based fallback when handed a NullClient, and the run must still
// complete.
type NullClient struct {
	Reason string
}

var _ Client = (*NullClient)(nil)

func (n *NullClient) Generate(_ context.Context, _ string, _ Tier, _ float64, _ int, _ time.Duration) (Response, error) {
	reason := n.Reason
	if reason == "" {
		reason = "llm client unavailable"
	}
	return Response{Success: false, Error: reason}, nil
}
