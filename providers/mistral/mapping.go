package mistral

import (
	"github.com/fable-labs/fable/core"
)

// buildRequest creates a Mistral API request from a Fable GenerateRequest.
// Mistral supports the system role natively, so roles map one-to-one.
func buildRequest(req *core.GenerateRequest, stream bool) *mistralRequest {
	mReq := &mistralRequest{
		Model:    string(req.Model),
		Messages: mapMessages(req.Messages),
		Stream:   stream,
	}

	if req.Temperature != nil {
		mReq.Temperature = req.Temperature
	}
	if req.MaxTokens != nil {
		mReq.MaxTokens = req.MaxTokens
	}

	return mReq
}

// mapMessages converts Fable messages to Mistral format, hoisting system
// messages to the front so the system prompt anchors the conversation.
func mapMessages(msgs []core.Message) []mistralMessage {
	out := make([]mistralMessage, 0, len(msgs))
	for _, msg := range msgs {
		if msg.Role != core.RoleSystem {
			continue
		}
		out = append(out, mistralMessage{Role: "system", Content: msg.Content})
	}
	for _, msg := range msgs {
		switch msg.Role {
		case core.RoleUser:
			out = append(out, mistralMessage{Role: "user", Content: msg.Content})
		case core.RoleAssistant:
			out = append(out, mistralMessage{Role: "assistant", Content: msg.Content})
		}
	}
	return out
}

// mapResponse converts a Mistral response to a Fable GenerateResponse.
// Only the first choice is used.
func mapResponse(resp *mistralResponse) (*core.GenerateResponse, error) {
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
