package fetcher

import (
	"context"

	"github.com/kestrelcrawl/intentcrawl/internal/ratelimit"
)

// RateLimited wraps an HTMLFetcher with a per-host courtesy throttle (spec
// §5's "ratelimit sits underneath the orchestrator's request_delay*jitter
// sleep"). A limiter-induced wait is accounted for as fetch-stage blocking
// time, still one of the spec's four suspension points.
type RateLimited struct {
	inner   HTMLFetcher
	limiter *ratelimit.Limiter
}

// NewRateLimited wraps inner with limiter. A nil limiter makes this a
// transparent passthrough.
func NewRateLimited(inner HTMLFetcher, limiter *ratelimit.Limiter) *RateLimited {
	return &RateLimited{inner: inner, limiter: limiter}
}

func (f *RateLimited) Fetch(ctx context.Context, url string, opts Options) FetchResult {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, url); err != nil {
			return FetchResult{URL: url, Success: false, Error: err.Error()}
		}
	}
	return f.inner.Fetch(ctx, url, opts)
}

var _ HTMLFetcher = (*RateLimited)(nil)
