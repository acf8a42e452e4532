package domain

import (
	"errors"
	"fmt"
	"time"
)

// Provider-boundary failure modes, surfaced uniformly regardless of vendor.
var (
	ErrAuth                = errors.New("provider: missing or invalid API key")
	ErrRateLimit           = errors.New("provider: rate limited")
	ErrTimeout             = errors.New("provider: request timed out")
	ErrMalformedResponse   = errors.New("provider: malformed response")
	ErrProviderUnavailable = errors.New("provider: unavailable")
)

// ErrUnknownTemplate is returned for an unknown (businessType, task) pair.
// No silent fallback: an ill-fitted prompt against a billed API is worse
// than a refused request.
var ErrUnknownTemplate = errors.New("prompts: no template for business type and task")

// ErrNotFound is returned by storage reads for unknown businesses.
var ErrNotFound = errors.New("not found")

// TemplateError reports a missing variable value or a residual placeholder
// after rendering. Fatal to the request that triggered it.
type TemplateError struct {
	Variable string
	Reason   string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("prompts: variable %q: %s", e.Variable, e.Reason)
}

// ProviderError wraps a vendor failure with its taxonomy sentinel so call
// sites can match via errors.Is while keeping vendor detail for logs.
type ProviderError struct {
	Provider   string
	Err        error // one of the sentinels above
	Message    string
	StatusCode int
	RetryAfter time.Duration
	Underlying error
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() []error {
	errs := []error{e.Err}
	if e.Underlying != nil {
		errs = append(errs, e.Underlying)
	}
	return errs
}

// Retryable reports whether the assembler's retry policy applies: only
// throttling and timeouts are worth a second attempt.
func Retryable(err error) bool {
	return errors.Is(err, ErrRateLimit) || errors.Is(err, ErrTimeout)
}
