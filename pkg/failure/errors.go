// Package failure defines the crawler's closed error-kind taxonomy.
//
// Every stage-local error type in this module implements ClassifiedError
// by reporting one of the Kind constants below. The taxonomy is closed:
// new failure modes must be mapped onto an existing Kind rather than
// grown ad hoc, so that frontier/orchestrator policy (§7 of the design)
// can switch on Kind without an ever-expanding case list.
package failure

// Kind is the closed set of error classifications the core distinguishes.
type Kind string

const (
	KindFetchFailed    Kind = "fetch_failed"
	KindExtractFailed  Kind = "extract_failed"
	KindLLMFailed      Kind = "llm_failed"
	KindParseFailed    Kind = "parse_failed"
	KindFilterRejected Kind = "filter_rejected"
	KindDuplicate      Kind = "duplicate"
	KindDepthExceeded  Kind = "depth_exceeded"
	KindCancelled      Kind = "cancelled"
	KindTimeout        Kind = "timeout"
)

// ClassifiedError is the error interface every pipeline stage returns.
// Retryable distinguishes transient failures (worth a retry.Retry attempt)
// from terminal ones; Kind is purely observational and must never be used
// to decide retry/continue/abort outside the policy already encoded by the
// caller (see §7 of the design for the per-Kind policy table).
type ClassifiedError interface {
	error
	Kind() Kind
	Retryable() bool
}

// Error is the default ClassifiedError implementation. Packages may embed
// it directly or define their own type when they need extra fields.
type Error struct {
	Message    string
	ErrorKind  Kind
	CanRetry   bool
	WrappedErr error
}

func New(kind Kind, retryable bool, message string) *Error {
	return &Error{Message: message, ErrorKind: kind, CanRetry: retryable}
}

func Wrap(kind Kind, retryable bool, message string, err error) *Error {
	return &Error{Message: message, ErrorKind: kind, CanRetry: retryable, WrappedErr: err}
}

func (e *Error) Error() string {
	if e.WrappedErr != nil {
		return e.Message + ": " + e.WrappedErr.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.WrappedErr }

func (e *Error) Kind() Kind { return e.ErrorKind }

func (e *Error) Retryable() bool { return e.CanRetry }
