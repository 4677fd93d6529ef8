// Package core provides the Fable generation contract and types.
package core

import "time"

// Feature represents a capability that a provider may support.
type Feature string

const (
	FeatureGenerate       Feature = "generate"
	FeatureStreaming      Feature = "generate_streaming"
	FeatureSystemMessages Feature = "system_messages"
)

// ModelID is a string identifier for a model.
// Using string avoids coupling to provider-specific enums.
type ModelID string

// ModelInfo describes a model available from a provider.
type ModelInfo struct {
	ID           ModelID   `json:"id"`
	DisplayName  string    `json:"display_name"`
	Capabilities []Feature `json:"capabilities"`
}

// HasCapability reports whether the model supports the given feature.
func (m ModelInfo) HasCapability(f Feature) bool {
	for _, cap := range m.Capabilities {
		if cap == f {
			return true
		}
	}
	return false
}

// Role represents a message participant role.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation.
//
// A system message anchors the start of the effective conversation sent to
// a provider; adapters extract or fold it according to each vendor's wire
// shape. Exactly one logical system message is active at a time; when
// several appear they are concatenated in order.
type Message struct {
	Role      Role           `json:"role"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp,omitzero"`
}

// System returns a system message with the current timestamp.
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content, Timestamp: time.Now()}
}

// User returns a user message with the current timestamp.
func User(content string) Message {
	return Message{Role: RoleUser, Content: content, Timestamp: time.Now()}
}

// Assistant returns an assistant message with the current timestamp.
func Assistant(content string) Message {
	return Message{Role: RoleAssistant, Content: content, Timestamp: time.Now()}
}

// TokenUsage tracks token consumption for a request.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// GenerateRequest represents a provider-agnostic text generation request.
type GenerateRequest struct {
	Model    ModelID   `json:"model"`
	Messages []Message `json:"messages"`

	// Temperature must be within [0, 1]. Nil means provider default.
	Temperature *float32 `json:"temperature,omitempty"`

	// MaxTokens caps the generated output. Nil means provider default.
	MaxTokens *int `json:"max_tokens,omitempty"`
}

// GenerateResponse represents a response from a generation model.
// For providers returning multiple choices, only the first choice is used.
type GenerateResponse struct {
	ID     string     `json:"id"`
	Model  ModelID    `json:"model"`
	Output string     `json:"output"`
	Usage  TokenUsage `json:"usage"`
}

// Chunk represents an incremental streaming response.
// Delta contains incremental assistant text.
type Chunk struct {
	Delta string `json:"delta"`
}
