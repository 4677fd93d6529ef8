// Package providers contains text-generation provider adapters for Fable.
//
// Each adapter is implemented in its own subpackage (e.g.,
// providers/openai, providers/anthropic). Adapters implement the
// core.Provider interface and draw credentials from a keypool.Pool.
//
// # Credential handling
//
// Every call selects a credential from the pool before touching the
// network; if the pool has nothing usable the adapter fails fast with an
// error wrapping core.ErrNoCredentials. After the call the adapter reports
// the outcome back: success via ReportSuccess, and failures via
// ReportError only when the error implicates the key itself (an auth
// rejection). Transport blips, rate limits and vendor 5xx spare the
// credential.
//
// # Streaming
//
// StreamGenerate returns a *GenerateStream (not a raw channel) to carry
// errors and the final response consistently. Adapters MUST:
//   - Close all channels (Ch, Err, Final) when finished
//   - Terminate promptly on context cancellation
//   - Send at most one error on Err
//   - Send exactly one response on Final (or zero on setup failure)
//
// # Adding a provider
//
// New adapters register a factory from init() and are created through the
// registry, so pipeline code never names a vendor:
//
//	p, err := providers.Create("openai", pool)
package providers

import (
	"github.com/fable-labs/fable/core"
)

// Re-export core types for convenience.
// Provider implementations can import just the providers package.
type (
	// Provider is the interface that generation providers must implement.
	Provider = core.Provider

	// Feature represents a capability that a provider may support.
	Feature = core.Feature

	// ModelInfo describes a model available from a provider.
	ModelInfo = core.ModelInfo

	// ModelID is a string identifier for a model.
	ModelID = core.ModelID

	// GenerateRequest represents a provider-agnostic generation request.
	GenerateRequest = core.GenerateRequest

	// GenerateResponse represents a response from a generation model.
	GenerateResponse = core.GenerateResponse

	// GenerateStream represents a streaming response from a provider.
	GenerateStream = core.GenerateStream

	// Chunk represents an incremental streaming response.
	Chunk = core.Chunk

	// Message represents a single message in a conversation.
	Message = core.Message

	// Role represents a message participant role.
	Role = core.Role

	// TokenUsage tracks token consumption for a request.
	TokenUsage = core.TokenUsage

	// ProviderError represents an error returned by a provider.
	ProviderError = core.ProviderError
)

// Re-export feature constants.
const (
	FeatureGenerate       = core.FeatureGenerate
	FeatureStreaming      = core.FeatureStreaming
	FeatureSystemMessages = core.FeatureSystemMessages
)

// Re-export role constants.
const (
	RoleSystem    = core.RoleSystem
	RoleUser      = core.RoleUser
	RoleAssistant = core.RoleAssistant
)

// Re-export sentinel errors.
var (
	ErrUnauthorized  = core.ErrUnauthorized
	ErrRateLimited   = core.ErrRateLimited
	ErrBadRequest    = core.ErrBadRequest
	ErrServer        = core.ErrServer
	ErrNetwork       = core.ErrNetwork
	ErrDecode        = core.ErrDecode
	ErrNoCredentials = core.ErrNoCredentials
)
