package anthropic

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fable-labs/fable/core"
	"github.com/fable-labs/fable/providers/internal/normalize"
)

// normalizeError converts an HTTP error response to a ProviderError with
// the appropriate sentinel.
func normalizeError(status int, header http.Header, body []byte, requestID string) error {
	var errResp anthropicErrorResponse
	_ = json.Unmarshal(body, &errResp)

	message := errResp.Error.Message
	if message == "" {
		message = http.StatusText(status)
	}

	code := errResp.Error.Type
	if code == "" {
		code = "unknown_error"
	}

	sentinel := normalize.SentinelForStatusWithOverrides(status, map[int]error{
		http.StatusNotFound: core.ErrNotFound,
	})

	err := normalize.ProviderError(providerID, status, requestID, code, message, sentinel)

	if status == http.StatusTooManyRequests {
		var pe *core.ProviderError
		if errors.As(err, &pe) {
			pe.RetryAfter = normalize.ParseRetryAfter(header.Get("retry-after"))
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

// penalizesCredential reports whether the failure should count against the
// credential. Anthropic additionally rejects disabled keys with a
// permission_error code on 403, which the shared predicate already treats
// as auth.
func penalizesCredential(err error) bool {
	return normalize.PenalizesCredential(err)
}
