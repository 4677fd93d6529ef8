package capabilities

import (
	"context"

	"github.com/fable-labs/fable/core"
	"github.com/fable-labs/fable/structured"
)

// JSONID is the capability ID steps use for structured generation.
const JSONID = "generate.json"

// JSON generates text through a provider and parses it as JSON, using
// the recovery ladder in structured before giving up on malformed
// output.
//
// Inputs: prompt (required), system, context.
// Params: provider (required), model, temperature, max_tokens.
// Outputs: data, usage.
type JSON struct {
	resolve    ProviderResolver
	clientOpts []core.ClientOption
}

// NewJSON creates the structured generation capability.
func NewJSON(resolve ProviderResolver, opts ...core.ClientOption) *JSON {
	return &JSON{resolve: resolve, clientOpts: opts}
}

// ID returns the capability identifier.
func (j *JSON) ID() string {
	return JSONID
}

// Execute runs one generation and returns the parsed data and usage. A
// *structured.ParseError is returned only after every recovery strategy
// has failed on the raw output.
func (j *JSON) Execute(ctx context.Context, input, params map[string]any) (map[string]any, error) {
	g, err := parseGeneration(input, params)
	if err != nil {
		return nil, err
	}

	resp, err := g.run(ctx, j.resolve, j.clientOpts)
	if err != nil {
		return nil, err
	}

	var data any
	if err := structured.Parse(resp.Output, &data); err != nil {
		return nil, err
	}

	return map[string]any{
		"data":  data,
		"usage": usageMap(resp.Usage),
	}, nil
}
