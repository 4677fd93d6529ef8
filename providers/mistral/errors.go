package mistral

import (
	"errors"
	"net/http"

	"github.com/fable-labs/fable/core"
	"github.com/fable-labs/fable/providers/internal/normalize"
)

// normalizeError converts an HTTP error response to a ProviderError with
// the appropriate sentinel. Mistral uses the OpenAI error envelope.
func normalizeError(status int, header http.Header, body []byte, requestID string) error {
	err := normalize.OpenAIStyleProviderError(providerID, status, body, requestID)

	if status == http.StatusTooManyRequests {
		var pe *core.ProviderError
		if errors.As(err, &pe) {
			pe.RetryAfter = normalize.ParseRetryAfter(header.Get("Retry-After"))
		}
	}
	return err
}

// newNetworkError creates a ProviderError for network-related failures.
func newNetworkError(err error) error {
	return normalize.NetworkError(providerID, err)
}

// newDecodeError creates a ProviderError for JSON decode failures.
func newDecodeError(err error) error {
	return normalize.DecodeError(providerID, err)
}

// penalizesCredential reports whether the failure should count against
// the credential.
func penalizesCredential(err error) bool {
	return normalize.PenalizesCredential(err)
}
