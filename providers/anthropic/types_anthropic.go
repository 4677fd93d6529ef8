package anthropic

// Wire types for the Anthropic Messages API.

type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Temperature *float32           `json:"temperature,omitempty"`
	Stream      bool               `json:"stream,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	ID         string                     `json:"id"`
	Type       string                     `json:"type"`
	Role       string                     `json:"role"`
	Model      string                     `json:"model"`
	Content    []anthropicResponseContent `json:"content"`
	StopReason string                     `json:"stop_reason"`
	Usage      anthropicUsage             `json:"usage"`
}

type anthropicResponseContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicErrorResponse struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Streaming event types.

type anthropicStreamEvent struct {
	Type    string                 `json:"type"`
	Index   int                    `json:"index"`
	Message *anthropicStreamStart  `json:"message,omitempty"`
	Delta   *anthropicStreamDelta  `json:"delta,omitempty"`
	Usage   *anthropicUsage        `json:"usage,omitempty"`
	Error   *anthropicStreamError  `json:"error,omitempty"`
}

type anthropicStreamStart struct {
	ID    string         `json:"id"`
	Model string         `json:"model"`
	Usage anthropicUsage `json:"usage"`
}

type anthropicStreamDelta struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicStreamError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
