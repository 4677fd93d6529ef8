// Package gemini provides a Google Gemini API provider adapter for Fable.
package gemini

import "github.com/fable-labs/fable/core"

// Model constants for Gemini models.
const (
	ModelGemini20Flash     core.ModelID = "gemini-2.0-flash"
	ModelGemini20FlashLite core.ModelID = "gemini-2.0-flash-lite"
	ModelGemini15Pro       core.ModelID = "gemini-1.5-pro"
)

// models is the static list of supported models. System messages are
// handled by prompt folding rather than a native role, so the feature
// is deliberately absent here.
var models = []core.ModelInfo{
	{
		ID:          ModelGemini20Flash,
		DisplayName: "Gemini 2.0 Flash",
		Capabilities: []core.Feature{
			core.FeatureGenerate,
			core.FeatureStreaming,
		},
	},
	{
		ID:          ModelGemini20FlashLite,
		DisplayName: "Gemini 2.0 Flash-Lite",
		Capabilities: []core.Feature{
			core.FeatureGenerate,
			core.FeatureStreaming,
		},
	},
	{
		ID:          ModelGemini15Pro,
		DisplayName: "Gemini 1.5 Pro",
		Capabilities: []core.Feature{
			core.FeatureGenerate,
			core.FeatureStreaming,
		},
	},
}
