package openai

import (
	"context"
	"net/http"

	"github.com/fable-labs/fable/core"
	"github.com/fable-labs/fable/keypool"
)

// providerID is the short name the provider registers under.
const providerID = "openai"

// OpenAI is a provider adapter for the OpenAI Chat Completions API.
// OpenAI is safe for concurrent use.
type OpenAI struct {
	config Config
}

// New creates a new OpenAI provider drawing credentials from pool.
func New(pool *keypool.Pool, opts ...Option) *OpenAI {
	cfg := Config{
		Credentials: pool,
		Strategy:    keypool.StrategyRandom,
		BaseURL:     DefaultBaseURL,
		HTTPClient:  http.DefaultClient,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return &OpenAI{config: cfg}
}

// ID returns the provider identifier.
func (p *OpenAI) ID() string {
	return providerID
}

// Models returns the list of available models.
func (p *OpenAI) Models() []core.ModelInfo {
	// Return a copy to prevent mutation
	result := make([]core.ModelInfo, len(models))
	copy(result, models)
	return result
}

// DefaultModel returns the first available model.
func (p *OpenAI) DefaultModel() core.ModelID {
	if len(models) == 0 {
		return ""
	}
	return models[0].ID
}

// Supports reports whether the provider supports the given feature.
func (p *OpenAI) Supports(feature core.Feature) bool {
	switch feature {
	case core.FeatureGenerate, core.FeatureStreaming, core.FeatureSystemMessages:
		return true
	default:
		return false
	}
}

// acquire selects a credential from the pool, failing fast when the
// provider has nothing usable.
func (p *OpenAI) acquire() (*keypool.Credential, error) {
	cred, ok := p.config.Credentials.Select(providerID, p.config.Strategy)
	if !ok {
		return nil, core.NoCredentialsError(providerID)
	}
	return cred, nil
}

// reportOutcome feeds the call result back to the pool. Only errors that
// implicate the key itself are penalized.
func (p *OpenAI) reportOutcome(cred *keypool.Credential, err error) {
	if err == nil {
		p.config.Credentials.ReportSuccess(cred)
		return
	}
	if penalizesCredential(err) {
		p.config.Credentials.ReportError(cred)
	}
}

// Generate sends a non-streaming generation request.
func (p *OpenAI) Generate(ctx context.Context, req *core.GenerateRequest) (*core.GenerateResponse, error) {
	cred, err := p.acquire()
	if err != nil {
		return nil, err
	}

	resp, err := p.doGenerate(ctx, cred, req)
	p.reportOutcome(cred, err)
	return resp, err
}

// StreamGenerate sends a streaming generation request. The credential
// outcome is reported from the stream setup: mid-stream failures are
// transport-level and never penalize the key.
func (p *OpenAI) StreamGenerate(ctx context.Context, req *core.GenerateRequest) (*core.GenerateStream, error) {
	cred, err := p.acquire()
	if err != nil {
		return nil, err
	}

	stream, err := p.doStreamGenerate(ctx, cred, req)
	p.reportOutcome(cred, err)
	return stream, err
}

// Compile-time check that OpenAI implements Provider.
var _ core.Provider = (*OpenAI)(nil)
