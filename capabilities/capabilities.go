// Package capabilities provides the built-in pipeline capabilities that
// call text-generation providers. Each capability resolves its provider
// by name at execution time, so one pipeline may mix vendors per step.
package capabilities

import (
	"context"
	"errors"
	"fmt"

	"github.com/fable-labs/fable/core"
	"github.com/fable-labs/fable/keypool"
	"github.com/fable-labs/fable/providers"
)

// ErrMissingInput indicates a required capability input was absent from
// the resolved step input.
var ErrMissingInput = errors.New("missing required input")

// ErrMissingParam indicates a required step param was absent.
var ErrMissingParam = errors.New("missing required param")

// ProviderResolver turns a provider name from step params into a usable
// provider instance.
type ProviderResolver func(name string) (core.Provider, error)

// PoolResolver resolves providers through the global provider registry,
// backed by the given credential pool.
func PoolResolver(pool *keypool.Pool) ProviderResolver {
	return func(name string) (core.Provider, error) {
		return providers.Create(name, pool)
	}
}

// generation holds the request fields shared by the text and JSON
// capabilities, extracted from step input and params.
type generation struct {
	provider    string
	model       string
	prompt      string
	system      string
	temperature *float32
	maxTokens   *int
}

// parseGeneration validates and extracts the shared generation fields.
// A "context" input is folded into the prompt as leading material.
func parseGeneration(input, params map[string]any) (*generation, error) {
	prompt, ok := stringField(input, "prompt")
	if !ok || prompt == "" {
		return nil, fmt.Errorf("%w: prompt", ErrMissingInput)
	}

	provider, ok := stringField(params, "provider")
	if !ok || provider == "" {
		return nil, fmt.Errorf("%w: provider", ErrMissingParam)
	}

	g := &generation{
		provider: provider,
		prompt:   prompt,
	}

	if system, ok := stringField(input, "system"); ok {
		g.system = system
	}
	if contextText, ok := stringField(input, "context"); ok && contextText != "" {
		g.prompt = contextText + "\n\n" + prompt
	}

	if model, ok := stringField(params, "model"); ok {
		g.model = model
	}
	if temp, ok := floatField(params, "temperature"); ok {
		t := float32(temp)
		g.temperature = &t
	}
	if max, ok := intField(params, "max_tokens"); ok {
		g.maxTokens = &max
	}

	return g, nil
}

// run executes the generation against the resolved provider.
func (g *generation) run(ctx context.Context, resolve ProviderResolver, clientOpts []core.ClientOption) (*core.GenerateResponse, error) {
	provider, err := resolve(g.provider)
	if err != nil {
		return nil, err
	}

	client := core.NewClient(provider, clientOpts...)
	builder := client.Generate(core.ModelID(g.model))

	if g.system != "" {
		builder.System(g.system)
	}
	builder.User(g.prompt)

	if g.temperature != nil {
		builder.Temperature(*g.temperature)
	}
	if g.maxTokens != nil {
		builder.MaxTokens(*g.maxTokens)
	}

	return builder.GetResponse(ctx)
}

// usageMap flattens token usage into a bag-friendly map.
func usageMap(u core.TokenUsage) map[string]any {
	return map[string]any{
		"prompt_tokens":     u.PromptTokens,
		"completion_tokens": u.CompletionTokens,
		"total_tokens":      u.TotalTokens,
	}
}

// stringField reads a string value from a map, tolerating missing keys
// and non-string values.
func stringField(m map[string]any, key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}

// floatField reads a numeric value as float64, accepting int values
// since YAML and JSON decoders disagree on number types.
func floatField(m map[string]any, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// intField reads a numeric value as int.
func intField(m map[string]any, key string) (int, bool) {
	switch v := m[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
