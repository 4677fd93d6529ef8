package core

import (
	"errors"
	"fmt"
	"time"
)

// ProviderError represents an error returned by a provider with full context.
type ProviderError struct {
	Provider  string
	Status    int
	RequestID string
	Code      string
	Message   string

	// RetryAfter carries the vendor's retry hint on rate limit errors.
	// Zero when the vendor supplied none.
	RetryAfter time.Duration

	Err error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("%s: %s (status=%d, code=%s, request_id=%s)",
			e.Provider, e.Message, e.Status, e.Code, e.RequestID)
	}
	return fmt.Sprintf("%s: %s (status=%d, code=%s)",
		e.Provider, e.Message, e.Status, e.Code)
}

// Unwrap returns the underlying error for error chaining.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Sentinel errors for classification.
var (
	// ErrUnauthorized marks a credential rejected by the vendor.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRateLimited marks a quota or rate-limit rejection.
	ErrRateLimited = errors.New("rate limited")
	// ErrBadRequest marks a request the vendor refused as malformed.
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
	ErrServer     = errors.New("server error")
	// ErrNetwork marks a transport failure before a vendor verdict.
	ErrNetwork = errors.New("network error")
	ErrDecode  = errors.New("decode error")
	// ErrNoCredentials marks a provider with no usable credential.
	// Adapters return this before attempting any network call.
	ErrNoCredentials = errors.New("no usable credential")
	ErrNotSupported  = errors.New("operation not supported")
)

// Validation errors with actionable guidance.
var (
	ErrModelRequired = errors.New("model required: pass a model ID to Client.Generate(), e.g., client.Generate(\"gpt-4o\")")
	ErrNoMessages    = errors.New("no messages: add at least one message using .System(), .User(), or .Assistant()")
)

// NoCredentialsError builds the ProviderError an adapter must return when
// its pool has no usable credential for the provider.
func NoCredentialsError(provider string) error {
	return &ProviderError{
		Provider: provider,
		Message:  "no usable credential for provider",
		Err:      ErrNoCredentials,
	}
}

// RetryAfter extracts the vendor retry hint from an error chain.
// Returns zero and false when the error carries none.
func RetryAfter(err error) (time.Duration, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) && pe.RetryAfter > 0 {
		return pe.RetryAfter, true
	}
	return 0, false
}
