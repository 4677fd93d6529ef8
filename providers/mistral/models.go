// Package mistral provides a Mistral API provider adapter for Fable.
package mistral

import "github.com/fable-labs/fable/core"

// Model constants for Mistral models.
const (
	ModelMistralLarge core.ModelID = "mistral-large-latest"
	ModelMistralSmall core.ModelID = "mistral-small-latest"
	ModelMinistral8B  core.ModelID = "ministral-8b-latest"
)

// models is the static list of supported models.
var models = []core.ModelInfo{
	{
		ID:          ModelMistralLarge,
		DisplayName: "Mistral Large",
		Capabilities: []core.Feature{
			core.FeatureGenerate,
			core.FeatureStreaming,
			core.FeatureSystemMessages,
		},
	},
	{
		ID:          ModelMistralSmall,
		DisplayName: "Mistral Small",
		Capabilities: []core.Feature{
			core.FeatureGenerate,
			core.FeatureStreaming,
			core.FeatureSystemMessages,
		},
	},
	{
		ID:          ModelMinistral8B,
		DisplayName: "Ministral 8B",
		Capabilities: []core.Feature{
			core.FeatureGenerate,
			core.FeatureStreaming,
			core.FeatureSystemMessages,
		},
	},
}
