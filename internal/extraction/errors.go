package extraction

import (
	"errors"
	"fmt"
)

// ErrNotConfigured signals that the AI strategy was requested without a
// credential. The orchestrator treats it as "AI not configured" and routes to
// regex instead of failing.
var ErrNotConfigured = errors.New("extraction: no AI credential configured")

// ErrUnreadableInput is the only extraction failure that surfaces to the end
// caller: the payload is empty or not text.
var ErrUnreadableInput = errors.New("extraction: input is empty or not text")

// ExternalServiceError wraps a provider transport failure (unreachable,
// rate-limited, timed out). It is always absorbed by a fallback, never
// propagated as a hard failure.
type ExternalServiceError struct {
	Provider string
	Err      error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("extraction: %s call failed: %v", e.Provider, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// ParseError reports a model response that survived transport but could not
// be coerced into the candidate schema after both recovery stages.
type ParseError struct {
	Stage string // "strict" or "recovery"
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("extraction: %s parse of model response failed: %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
