// Package ratelimit is the per-host courtesy throttle that sits underneath
// the orchestrator's request_delay*jitter sleep (spec §4.8, §5): it does
// not replace that sleep, it bounds how fast any one host can be hit even
// if the orchestrator's delay is configured low. A host whose bucket is
// empty blocks the calling fetch, which is accounted for as fetch-stage
// blocking time (still within the spec's four suspension points).
package ratelimit

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter hands out one token-bucket rate.Limiter per host, grounded on
// erndmrc-spider2 and TelegramDigestBot's golang.org/x/time/rate usage.
type Limiter struct {
	rps   float64
	burst int

	mu       sync.Mutex
	perHost  map[string]*rate.Limiter
}

// New creates a Limiter allowing rps requests/second per host, with burst
// headroom.
func New(rps float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{rps: rps, burst: burst, perHost: make(map[string]*rate.Limiter)}
}

// Wait blocks until rawURL's host may be fetched, or ctx is cancelled. A
// non-positive configured rps disables throttling entirely (Wait returns
// immediately).
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	if l.rps <= 0 {
		return nil
	}

	host := hostOf(rawURL)

	l.mu.Lock()
	limiter, ok := l.perHost[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(l.rps), l.burst)
		l.perHost[host] = limiter
	}
	l.mu.Unlock()

	return limiter.Wait(ctx)
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return parsed.Hostname()
}
