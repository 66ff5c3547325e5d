package retry

import (
	"time"

	"github.com/kestrelcrawl/intentcrawl/pkg/timeutil"
)

// RetryParam holds the parameters for retry logic. These are supplied by
// the caller (config-derived) and are not known by the retry handler
// internally.
type RetryParam struct {
	BaseDelay    time.Duration
	Jitter       time.Duration
	RandomSeed   int64
	MaxAttempts  int
	BackoffParam timeutil.BackoffParam
}

func NewRetryParam(
	baseDelay time.Duration,
	jitter time.Duration,
	randomSeed int64,
	maxAttempts int,
	backoffParam timeutil.BackoffParam,
) RetryParam {
	return RetryParam{
		BaseDelay:    baseDelay,
		Jitter:       jitter,
		RandomSeed:   randomSeed,
		MaxAttempts:  maxAttempts,
		BackoffParam: backoffParam,
	}
}

// Result carries the outcome of a Retry call.
type Result[T any] struct {
	value    T
	err      error
	attempts int
}

func NewSuccessResult[T any](value T, attempts int) Result[T] {
	return Result[T]{value: value, attempts: attempts}
}

func (r Result[T]) Value() T       { return r.value }
func (r Result[T]) Err() error     { return r.err }
func (r Result[T]) Attempts() int  { return r.attempts }
func (r Result[T]) Succeeded() bool { return r.err == nil }
