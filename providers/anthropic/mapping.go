package anthropic

import (
	"strings"

	"github.com/fable-labs/fable/core"
)

// defaultMaxTokens is the default max_tokens value when not specified.
// Anthropic requires max_tokens, so we provide a reasonable default.
const defaultMaxTokens = 4096

// buildRequest creates an Anthropic API request from a Fable
// GenerateRequest.
func buildRequest(req *core.GenerateRequest, stream bool) *anthropicRequest {
	system, messages := mapMessages(req.Messages)

	maxTokens := defaultMaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	antReq := &anthropicRequest{
		Model:     string(req.Model),
		Messages:  messages,
		MaxTokens: maxTokens,
		System:    system,
		Stream:    stream,
	}

	if req.Temperature != nil {
		antReq.Temperature = req.Temperature
	}

	return antReq
}

// mapMessages converts Fable messages to Anthropic format.
// Anthropic carries the system prompt as a top-level field, so system
// messages are extracted into a single string and the rest converted in
// order.
func mapMessages(msgs []core.Message) (system string, messages []anthropicMessage) {
	var systemParts []string

	for _, msg := range msgs {
		switch msg.Role {
		case core.RoleSystem:
			systemParts = append(systemParts, msg.Content)

		case core.RoleUser:
			messages = append(messages, anthropicMessage{
				Role:    "user",
				Content: msg.Content,
			})

		case core.RoleAssistant:
			messages = append(messages, anthropicMessage{
				Role:    "assistant",
				Content: msg.Content,
			})
		}
	}

	// Concatenate system messages with double newlines
	if len(systemParts) > 0 {
		system = strings.Join(systemParts, "\n\n")
	}

	return system, messages
}

// mapResponse converts an Anthropic response to a Fable GenerateResponse.
func mapResponse(resp *anthropicResponse) (*core.GenerateResponse, error) {
	result := &core.GenerateResponse{
		ID:    resp.ID,
		Model: core.ModelID(resp.Model),
		Usage: core.TokenUsage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
	}

	var textParts []string
	for _, block := range resp.Content {
		if block.Type == "text" {
			textParts = append(textParts, block.Text)
		}
	}
	result.Output = strings.Join(textParts, "")

	return result, nil
}
