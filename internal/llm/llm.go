// Package llm is the LLMClient capability (spec §6): a single Generate
// operation parameterised by a model tier, with concrete adapters plugged
// in at construction rather than the core importing any one vendor SDK
// directly (spec §9, "Polymorphism across search providers and fetchers").
package llm

import (
	"context"
	"time"
)

// Tier distinguishes the three abstract LLM roles the core calls by name;
// each adapter maps a Tier onto one of its own configured model names.
type Tier string

const (
	TierFast     Tier = "fast"
	TierIntent   Tier = "intent"
	TierAnalysis Tier = "analysis"
)

// Response is the capability's result envelope. Success is false whenever
// the call could not be completed or the provider reported an error;
// callers must check Success rather than inferring it from Content being
// non-empty.
type Response struct {
	Content string
	Success bool
	Error   string
}

// Client is the capability interface every C3/C6/C7 call site depends on.
type Client interface {
	Generate(ctx context.Context, prompt string, tier Tier, temperature float64, maxTokens int, timeout time.Duration) (Response, error)
}
