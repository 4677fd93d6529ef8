package core

import (
	"time"

	"github.com/rs/zerolog"
)

// TelemetryHook receives notifications about request lifecycle events.
// Implementations can use this for logging, metrics, tracing, etc.
//
// Event types never include sensitive data: API keys stay behind
// core.Secret, and prompt/response content is never attached. Only
// operational metadata (provider, model, timing, token counts) is exposed,
// so telemetry can be logged or shipped to monitoring systems safely.
type TelemetryHook interface {
	// OnRequestStart is called when a request to a provider begins.
	OnRequestStart(e RequestStartEvent)

	// OnRequestEnd is called when a request to a provider completes.
	OnRequestEnd(e RequestEndEvent)
}

// RequestStartEvent contains metadata about a starting request.
type RequestStartEvent struct {
	Provider string    // Provider identifier (e.g., "openai", "anthropic")
	Model    ModelID   // Model being called
	Start    time.Time // When the request started
}

// RequestEndEvent contains metadata about a completed request.
type RequestEndEvent struct {
	Provider string     // Provider identifier
	Model    ModelID    // Model that was called
	Start    time.Time  // When the request started
	End      time.Time  // When the request completed
	Usage    TokenUsage // Token consumption
	Err      error      // Error if request failed, nil on success
}

// Duration returns the elapsed time for the request.
func (e RequestEndEvent) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// NoopTelemetryHook is a no-op implementation of TelemetryHook.
// Use this as a default when no telemetry is configured.
type NoopTelemetryHook struct{}

// OnRequestStart does nothing.
func (NoopTelemetryHook) OnRequestStart(RequestStartEvent) {}

// OnRequestEnd does nothing.
func (NoopTelemetryHook) OnRequestEnd(RequestEndEvent) {}

// Compile-time check that NoopTelemetryHook implements TelemetryHook.
var _ TelemetryHook = NoopTelemetryHook{}

// LogTelemetryHook emits request lifecycle events through a zerolog logger.
type LogTelemetryHook struct {
	Logger zerolog.Logger
}

// NewLogTelemetryHook creates a telemetry hook writing to the given logger.
func NewLogTelemetryHook(logger zerolog.Logger) *LogTelemetryHook {
	return &LogTelemetryHook{Logger: logger}
}

// OnRequestStart logs the start of a provider request.
func (h *LogTelemetryHook) OnRequestStart(e RequestStartEvent) {
	h.Logger.Debug().
		Str("provider", e.Provider).
		Str("model", string(e.Model)).
		Msg("generation request started")
}

// OnRequestEnd logs the completion of a provider request.
func (h *LogTelemetryHook) OnRequestEnd(e RequestEndEvent) {
	evt := h.Logger.Info()
	if e.Err != nil {
		evt = h.Logger.Error().Err(e.Err)
	}
	evt.
		Str("provider", e.Provider).
		Str("model", string(e.Model)).
		Dur("duration", e.Duration()).
		Int("prompt_tokens", e.Usage.PromptTokens).
		Int("completion_tokens", e.Usage.CompletionTokens).
		Msg("generation request finished")
}

// Compile-time check that LogTelemetryHook implements TelemetryHook.
var _ TelemetryHook = (*LogTelemetryHook)(nil)
