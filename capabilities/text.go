package capabilities

import (
	"context"

	"github.com/fable-labs/fable/core"
)

// TextID is the capability ID steps use for free-form text generation.
const TextID = "generate.text"

// Text generates free-form text through a provider.
//
// Inputs: prompt (required), system, context.
// Params: provider (required), model, temperature, max_tokens.
// Outputs: text, usage.
type Text struct {
	resolve    ProviderResolver
	clientOpts []core.ClientOption
}

// NewText creates the text generation capability. Client options apply
// to every call, typically retry policy or telemetry.
func NewText(resolve ProviderResolver, opts ...core.ClientOption) *Text {
	return &Text{resolve: resolve, clientOpts: opts}
}

// ID returns the capability identifier.
func (t *Text) ID() string {
	return TextID
}

// Execute runs one generation and returns the produced text and usage.
func (t *Text) Execute(ctx context.Context, input, params map[string]any) (map[string]any, error) {
	g, err := parseGeneration(input, params)
	if err != nil {
		return nil, err
	}

	resp, err := g.run(ctx, t.resolve, t.clientOpts)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"text":  resp.Output,
		"usage": usageMap(resp.Usage),
	}, nil
}
