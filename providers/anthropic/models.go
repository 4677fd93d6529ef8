// Package anthropic provides an Anthropic API provider adapter for Fable.
package anthropic

import "github.com/fable-labs/fable/core"

// Model constants for Anthropic Claude models.
const (
	ModelClaudeSonnet45 core.ModelID = "claude-sonnet-4-5"
	ModelClaudeHaiku45  core.ModelID = "claude-haiku-4-5"
	ModelClaudeOpus45   core.ModelID = "claude-opus-4-5"
)

// models is the static list of supported models.
var models = []core.ModelInfo{
	{
		ID:          ModelClaudeSonnet45,
		DisplayName: "Claude Sonnet 4.5",
		Capabilities: []core.Feature{
			core.FeatureGenerate,
			core.FeatureStreaming,
			core.FeatureSystemMessages,
		},
	},
	{
		ID:          ModelClaudeHaiku45,
		DisplayName: "Claude Haiku 4.5",
		Capabilities: []core.Feature{
			core.FeatureGenerate,
			core.FeatureStreaming,
			core.FeatureSystemMessages,
		},
	},
	{
		ID:          ModelClaudeOpus45,
		DisplayName: "Claude Opus 4.5",
		Capabilities: []core.Feature{
			core.FeatureGenerate,
			core.FeatureStreaming,
			core.FeatureSystemMessages,
		},
	},
}
