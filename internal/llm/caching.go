package llm

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// CachingClient decorates any Client with an in-memory response cache keyed
// by md5(tier + prompt), so re-analysing a byte-identical prompt (e.g. the
// quick gate re-checking a page after a retry) skips the network call.
// Grounded on original_source's ai_analyzer.py cache, which keys on
// md5(model + system_prompt + user_prompt); this port folds tier in place
// of an explicit model name since tier already determines the model for a
// given adapter.
type CachingClient struct {
	inner Client

	mu    sync.Mutex
	cache map[string]Response
}

func NewCachingClient(inner Client) *CachingClient {
	return &CachingClient{inner: inner, cache: make(map[string]Response)}
}

var _ Client = (*CachingClient)(nil)

func (c *CachingClient) Generate(ctx context.Context, prompt string, tier Tier, temperature float64, maxTokens int, timeout time.Duration) (Response, error) {
	key := cacheKey(tier, prompt)

	c.mu.Lock()
	if cached, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	resp, err := c.inner.Generate(ctx, prompt, tier, temperature, maxTokens, timeout)
	if err != nil || !resp.Success {
		return resp, err
	}

	c.mu.Lock()
	c.cache[key] = resp
	c.mu.Unlock()

	return resp, nil
}

func cacheKey(tier Tier, prompt string) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s:%s", tier, prompt)))
	return hex.EncodeToString(sum[:])
}
