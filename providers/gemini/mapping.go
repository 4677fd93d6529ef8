package gemini

import (
	"strings"

	"github.com/fable-labs/fable/core"
)

// systemAck is the canned model turn closing the folded system exchange.
const systemAck = "Understood."

// buildRequest creates a Gemini API request from a Fable GenerateRequest.
func buildRequest(req *core.GenerateRequest) *geminiRequest {
	gemReq := &geminiRequest{
		Contents: mapMessages(req.Messages),
	}

	genConfig := &geminiGenConfig{}
	hasGenConfig := false

	if req.Temperature != nil {
		genConfig.Temperature = req.Temperature
		hasGenConfig = true
	}
	if req.MaxTokens != nil {
		genConfig.MaxOutputTokens = req.MaxTokens
		hasGenConfig = true
	}

	if hasGenConfig {
		gemReq.GenerationConfig = genConfig
	}

	return gemReq
}

// mapMessages converts Fable messages to Gemini contents.
//
// Gemini's conversation carries only user and model turns. The system
// prompt is folded into a leading user/model exchange: the system text
// becomes the first user turn, answered by a canned model
// acknowledgement, so the real conversation starts from a primed context.
func mapMessages(msgs []core.Message) []geminiContent {
	var systemParts []string
	var rest []geminiContent

	for _, msg := range msgs {
		switch msg.Role {
		case core.RoleSystem:
			systemParts = append(systemParts, msg.Content)
		case core.RoleUser:
			rest = append(rest, geminiContent{
				Role:  "user",
				Parts: []geminiPart{{Text: msg.Content}},
			})
		case core.RoleAssistant:
			rest = append(rest, geminiContent{
				Role:  "model",
				Parts: []geminiPart{{Text: msg.Content}},
			})
		}
	}

	if len(systemParts) == 0 {
		return rest
	}

	contents := make([]geminiContent, 0, len(rest)+2)
	contents = append(contents,
		geminiContent{
			Role:  "user",
			Parts: []geminiPart{{Text: strings.Join(systemParts, "\n\n")}},
		},
		geminiContent{
			Role:  "model",
			Parts: []geminiPart{{Text: systemAck}},
		},
	)
	return append(contents, rest...)
}

// mapResponse converts a Gemini response to a Fable GenerateResponse.
// Only the first candidate is used.
func mapResponse(resp *geminiResponse) (*core.GenerateResponse, error) {
	result := &core.GenerateResponse{
		ID:    resp.ResponseID,
		Model: core.ModelID(resp.ModelVersion),
		Usage: core.TokenUsage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		},
	}

	if len(resp.Candidates) > 0 {
		var textParts []string
		for _, part := range resp.Candidates[0].Content.Parts {
			textParts = append(textParts, part.Text)
		}
		result.Output = strings.Join(textParts, "")
	}

	return result, nil
}
