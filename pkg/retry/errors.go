package retry

import (
	"github.com/kestrelcrawl/intentcrawl/pkg/failure"
)

// RetryError is returned once a retry.Retry call exhausts MaxAttempts.
type RetryError struct {
	Message     string
	CanRetry    bool
	LastAttempt int
}

func (e *RetryError) Error() string {
	return "retry error: " + e.Message
}

func (e *RetryError) Kind() failure.Kind {
	return failure.KindTimeout
}

func (e *RetryError) Retryable() bool {
	return e.CanRetry
}

// Is allows errors.Is to match RetryError types regardless of field values.
func (e *RetryError) Is(target error) bool {
	_, ok := target.(*RetryError)
	return ok
}
