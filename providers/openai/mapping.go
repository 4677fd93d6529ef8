package openai

import (
	"github.com/fable-labs/fable/core"
)

// buildRequest creates an OpenAI API request from a Fable GenerateRequest.
// OpenAI supports the system role natively, so roles map one-to-one.
func buildRequest(req *core.GenerateRequest, stream bool) *openAIRequest {
	oaReq := &openAIRequest{
		Model:    string(req.Model),
		Messages: mapMessages(req.Messages),
		Stream:   stream,
	}

	if req.Temperature != nil {
		oaReq.Temperature = req.Temperature
	}
	if req.MaxTokens != nil {
		oaReq.MaxTokens = req.MaxTokens
	}
	if stream {
		// Ask for a trailing usage chunk.
		oaReq.StreamOpts = &streamOptions{IncludeUsage: true}
	}

	return oaReq
}

// mapMessages converts Fable messages to OpenAI format, hoisting system
// messages to the front so the system prompt anchors the conversation.
func mapMessages(msgs []core.Message) []openAIMessage {
	out := make([]openAIMessage, 0, len(msgs))
	for _, msg := range msgs {
		if msg.Role != core.RoleSystem {
			continue
		}
		out = append(out, openAIMessage{Role: "system", Content: msg.Content})
	}
	for _, msg := range msgs {
		switch msg.Role {
		case core.RoleUser:
			out = append(out, openAIMessage{Role: "user", Content: msg.Content})
		case core.RoleAssistant:
			out = append(out, openAIMessage{Role: "assistant", Content: msg.Content})
		}
	}
	return out
}

// mapResponse converts an OpenAI response to a Fable GenerateResponse.
// Only the first choice is used.
func mapResponse(resp *openAIResponse) (*core.GenerateResponse, error) {
	result := &core.GenerateResponse{
		ID:    resp.ID,
		Model: core.ModelID(resp.Model),
		Usage: core.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}

	if len(resp.Choices) > 0 {
		result.Output = resp.Choices[0].Message.Content
	}

	return result, nil
}
