package mistral

// Wire types for the Mistral chat completions API. The surface is
// OpenAI-compatible except that the token cap is still max_tokens.

type mistralRequest struct {
	Model       string           `json:"model"`
	Messages    []mistralMessage `json:"messages"`
	Temperature *float32         `json:"temperature,omitempty"`
	MaxTokens   *int             `json:"max_tokens,omitempty"`
	Stream      bool             `json:"stream,omitempty"`
}

type mistralMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type mistralResponse struct {
	ID      string          `json:"id"`
	Model   string          `json:"model"`
	Choices []mistralChoice `json:"choices"`
	Usage   mistralUsage    `json:"usage"`
}

type mistralChoice struct {
	Index        int            `json:"index"`
	Message      mistralMessage `json:"message"`
	FinishReason string         `json:"finish_reason"`
}

type mistralUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Streaming chunk types.

type mistralStreamChunk struct {
	ID      string                `json:"id"`
	Model   string                `json:"model"`
	Choices []mistralStreamChoice `json:"choices"`
	Usage   *mistralUsage         `json:"usage,omitempty"`
}

type mistralStreamChoice struct {
	Index        int                `json:"index"`
	Delta        mistralStreamDelta `json:"delta"`
	FinishReason *string            `json:"finish_reason"`
}

type mistralStreamDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}
