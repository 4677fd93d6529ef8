package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestProviderErrorFormat(t *testing.T) {
	withID := &ProviderError{
		Provider:  "openai",
		Status:    429,
		RequestID: "req-123",
		Code:      "rate_limit_exceeded",
		Message:   "too many requests",
		Err:       ErrRateLimited,
	}
	msg := withID.Error()
	for _, want := range []string{"openai", "too many requests", "429", "req-123"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}

	withoutID := &ProviderError{Provider: "openai", Status: 500, Message: "oops", Err: ErrServer}
	if strings.Contains(withoutID.Error(), "request_id") {
		t.Errorf("Error() = %q, includes request_id with none set", withoutID.Error())
	}
}

func TestProviderErrorUnwrap(t *testing.T) {
	err := &ProviderError{Provider: "openai", Err: ErrUnauthorized}

	if !errors.Is(err, ErrUnauthorized) {
		t.Error("errors.Is(err, ErrUnauthorized) = false")
	}
	if errors.Is(err, ErrRateLimited) {
		t.Error("errors.Is(err, ErrRateLimited) = true for an auth error")
	}

	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Provider != "openai" {
		t.Error("errors.As failed to recover the ProviderError")
	}
}

func TestNoCredentialsError(t *testing.T) {
	err := NoCredentialsError("anthropic")

	if !errors.Is(err, ErrNoCredentials) {
		t.Error("errors.Is(err, ErrNoCredentials) = false")
	}
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatal("error is not a *ProviderError")
	}
	if pe.Provider != "anthropic" {
		t.Errorf("Provider = %q, want anthropic", pe.Provider)
	}
}

func TestRetryAfterHelper(t *testing.T) {
	hinted := &ProviderError{Err: ErrRateLimited, RetryAfter: 3 * time.Second}
	if d, ok := RetryAfter(hinted); !ok || d != 3*time.Second {
		t.Errorf("RetryAfter() = %v, %v, want 3s, true", d, ok)
	}

	if _, ok := RetryAfter(&ProviderError{Err: ErrRateLimited}); ok {
		t.Error("RetryAfter() reported a hint for an error without one")
	}
	if _, ok := RetryAfter(errors.New("plain")); ok {
		t.Error("RetryAfter() reported a hint for a plain error")
	}
}
