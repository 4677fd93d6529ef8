// Package openai provides an OpenAI API provider adapter for Fable.
package openai

import "github.com/fable-labs/fable/core"

// Model constants for OpenAI models.
const (
	ModelGPT4o     core.ModelID = "gpt-4o"
	ModelGPT4oMini core.ModelID = "gpt-4o-mini"
	ModelGPT41     core.ModelID = "gpt-4.1"
)

// models is the static list of supported models.
var models = []core.ModelInfo{
	{
		ID:          ModelGPT4o,
		DisplayName: "GPT-4o",
		Capabilities: []core.Feature{
			core.FeatureGenerate,
			core.FeatureStreaming,
			core.FeatureSystemMessages,
		},
	},
	{
		ID:          ModelGPT4oMini,
		DisplayName: "GPT-4o mini",
		Capabilities: []core.Feature{
			core.FeatureGenerate,
			core.FeatureStreaming,
			core.FeatureSystemMessages,
		},
	},
	{
		ID:          ModelGPT41,
		DisplayName: "GPT-4.1",
		Capabilities: []core.Feature{
			core.FeatureGenerate,
			core.FeatureStreaming,
			core.FeatureSystemMessages,
		},
	},
}
