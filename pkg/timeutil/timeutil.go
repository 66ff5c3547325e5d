package timeutil

import (
	"math/rand"
	"time"
)

// Exponential Backoff parameters
// example:
//
//	initialDuration := 1 * time.Second // Start with 1s
//	multiplier := 2.0                 // Double each time
//	maxDuration := 30 * time.Second    // Cap at 30s

type BackoffParam struct {
	initialDuration time.Duration
	multiplier      float64
	maxDuration     time.Duration
}

func NewBackoffParam(
	initialDuration time.Duration,
	multiplier float64,
	maxDuration time.Duration,
) BackoffParam {
	return BackoffParam{
		initialDuration: initialDuration,
		multiplier:      multiplier,
		maxDuration:     maxDuration,
	}
}

func (b *BackoffParam) InitialDuration() time.Duration {
	return b.initialDuration
}

func (b *BackoffParam) Multiplier() float64 {
	return b.multiplier
}

func (b *BackoffParam) MaxDuration() time.Duration {
	return b.maxDuration
}

// DurationPtr is a helper function to create a pointer to a time.Duration
func DurationPtr(d time.Duration) *time.Duration {
	return &d
}

// MaxDuration returns the largest duration in durations, or zero for an
// empty slice. Does not mutate its input.
func MaxDuration(durations []time.Duration) time.Duration {
	var max time.Duration
	for i, d := range durations {
		if i == 0 || d > max {
			max = d
		}
	}
	return max
}

// ComputeJitter returns a uniformly distributed duration in [0, max).
// max <= 0 always returns 0.
func ComputeJitter(max time.Duration, rng rand.Rand) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rng.Int63n(int64(max)))
}

// ExponentialBackoffDelay computes the delay before retry attempt number
// backoffCount (1-indexed), growing geometrically from InitialDuration by
// Multiplier, capped at MaxDuration, plus up to `jitter` of uniform random
// variance on top.
func ExponentialBackoffDelay(backoffCount int, jitter time.Duration, rng rand.Rand, param BackoffParam) time.Duration {
	if backoffCount < 1 {
		backoffCount = 1
	}
	base := float64(param.initialDuration)
	for i := 1; i < backoffCount; i++ {
		base *= param.multiplier
	}
	delay := time.Duration(base)
	if param.maxDuration > 0 && delay > param.maxDuration {
		delay = param.maxDuration
	}
	return delay + ComputeJitter(jitter, rng)
}

// Sleeper abstracts time.Sleep so orchestration code can be driven by a
// fake clock in tests.
type Sleeper interface {
	Sleep(d time.Duration)
}

type RealSleeper struct{}

func NewRealSleeper() RealSleeper { return RealSleeper{} }

func (RealSleeper) Sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}
