package gemini

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/fable-labs/fable/core"
	"github.com/fable-labs/fable/providers/internal/normalize"
)

// normalizeError converts an HTTP error response to a ProviderError with
// the appropriate sentinel. Gemini rejects bad API keys with 400
// INVALID_ARGUMENT rather than 401, so the status mapping alone is not
// enough.
func normalizeError(status int, body []byte) error {
	var errResp geminiErrorResponse
	_ = json.Unmarshal(body, &errResp)

	message := errResp.Error.Message
	if message == "" {
		message = http.StatusText(status)
	}

	sentinel := normalize.SentinelForStatusWithOverrides(status, map[int]error{
		http.StatusNotFound: core.ErrNotFound,
	})
	if status == http.StatusBadRequest && looksLikeKeyRejection(errResp.Error.Status, message) {
		sentinel = core.ErrUnauthorized
	}

	return normalize.ProviderError(providerID, status, "", errResp.Error.Status, message, sentinel)
}

// looksLikeKeyRejection spots Gemini's 400-status key rejections.
func looksLikeKeyRejection(code, message string) bool {
	return code == "INVALID_ARGUMENT" && strings.Contains(strings.ToLower(message), "api key")
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
// the credential. Key rejections arrive as ErrUnauthorized after
// normalizeError's 400-override, so the shared predicate applies.
func penalizesCredential(err error) bool {
	return normalize.PenalizesCredential(err)
}
