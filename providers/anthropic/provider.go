package anthropic

import (
	"context"
	"net/http"

	"github.com/fable-labs/fable/core"
	"github.com/fable-labs/fable/keypool"
)

// providerID is the short name the provider registers under.
const providerID = "anthropic"

// Anthropic is a provider adapter for the Anthropic Messages API.
// Anthropic is safe for concurrent use.
type Anthropic struct {
	config Config
}

// New creates a new Anthropic provider drawing credentials from pool.
func New(pool *keypool.Pool, opts ...Option) *Anthropic {
	cfg := Config{
		Credentials: pool,
		Strategy:    keypool.StrategyRandom,
		BaseURL:     DefaultBaseURL,
		HTTPClient:  http.DefaultClient,
		Version:     DefaultVersion,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return &Anthropic{config: cfg}
}

// ID returns the provider identifier.
func (p *Anthropic) ID() string {
	return providerID
}

// Models returns the list of available models.
func (p *Anthropic) Models() []core.ModelInfo {
	// Return a copy to prevent mutation
	result := make([]core.ModelInfo, len(models))
	copy(result, models)
	return result
}

// DefaultModel returns the first available model.
func (p *Anthropic) DefaultModel() core.ModelID {
	if len(models) == 0 {
		return ""
	}
	return models[0].ID
}

// Supports reports whether the provider supports the given feature.
func (p *Anthropic) Supports(feature core.Feature) bool {
	switch feature {
	case core.FeatureGenerate, core.FeatureStreaming, core.FeatureSystemMessages:
		return true
	default:
		return false
	}
}

// buildHeaders constructs the HTTP headers for an API request using the
// selected credential.
func (p *Anthropic) buildHeaders(cred *keypool.Credential) http.Header {
	headers := make(http.Header)

	headers.Set("x-api-key", cred.Key.Expose())
	headers.Set("anthropic-version", p.config.Version)
	headers.Set("Content-Type", "application/json")

	for key, values := range p.config.Headers {
		for _, v := range values {
			headers.Add(key, v)
		}
	}

	return headers
}

func (p *Anthropic) acquire() (*keypool.Credential, error) {
	cred, ok := p.config.Credentials.Select(providerID, p.config.Strategy)
	if !ok {
		return nil, core.NoCredentialsError(providerID)
	}
	return cred, nil
}

func (p *Anthropic) reportOutcome(cred *keypool.Credential, err error) {
	if err == nil {
		p.config.Credentials.ReportSuccess(cred)
		return
	}
	if penalizesCredential(err) {
		p.config.Credentials.ReportError(cred)
	}
}

// Generate sends a non-streaming generation request.
func (p *Anthropic) Generate(ctx context.Context, req *core.GenerateRequest) (*core.GenerateResponse, error) {
	cred, err := p.acquire()
	if err != nil {
		return nil, err
	}

	resp, err := p.doGenerate(ctx, cred, req)
	p.reportOutcome(cred, err)
	return resp, err
}

// StreamGenerate sends a streaming generation request.
func (p *Anthropic) StreamGenerate(ctx context.Context, req *core.GenerateRequest) (*core.GenerateStream, error) {
	cred, err := p.acquire()
	if err != nil {
		return nil, err
	}

	stream, err := p.doStreamGenerate(ctx, cred, req)
	p.reportOutcome(cred, err)
	return stream, err
}

// Compile-time check that Anthropic implements Provider.
var _ core.Provider = (*Anthropic)(nil)
