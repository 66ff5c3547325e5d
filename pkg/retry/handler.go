package retry

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/kestrelcrawl/intentcrawl/pkg/failure"
	"github.com/kestrelcrawl/intentcrawl/pkg/timeutil"
)

// Retry executes fn up to retryParam.MaxAttempts times, applying
// exponential backoff with jitter between attempts. Only errors that
// report Retryable()==true trigger another attempt.
//
// The search providers wrap their HTTP calls in Retry, so the seed
// generator sees each provider call as either succeeding once or failing
// once; the fetchers and LLM clients do not call Retry and make a single
// attempt.
func Retry[T any](retryParam RetryParam, fn func() (T, failure.ClassifiedError)) Result[T] {
	var lastErr failure.ClassifiedError
	var zero T

	if retryParam.MaxAttempts < 1 {
		return Result[T]{
			value:    zero,
			err:      &RetryError{Message: "max attempts must be >= 1", CanRetry: false},
			attempts: 0,
		}
	}

	rng := rand.New(rand.NewSource(retryParam.RandomSeed))

	for attempt := 1; attempt <= retryParam.MaxAttempts; attempt++ {
		result, err := fn()

		if err == nil {
			return NewSuccessResult(result, attempt)
		}

		lastErr = err

		if !err.Retryable() {
			return Result[T]{value: zero, err: err, attempts: attempt}
		}

		if attempt == retryParam.MaxAttempts {
			break
		}

		delay := timeutil.ExponentialBackoffDelay(attempt, retryParam.Jitter, *rng, retryParam.BackoffParam)
		time.Sleep(delay)
	}

	return Result[T]{
		value: zero,
		err: &RetryError{
			Message:     fmt.Sprintf("exhausted %d attempts: %v", retryParam.MaxAttempts, lastErr),
			CanRetry:    true,
			LastAttempt: retryParam.MaxAttempts,
		},
		attempts: retryParam.MaxAttempts,
	}
}
