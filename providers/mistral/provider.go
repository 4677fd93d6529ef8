package mistral

import (
	"context"
	"net/http"

	"github.com/fable-labs/fable/core"
	"github.com/fable-labs/fable/keypool"
)

// providerID is the short name the provider registers under.
const providerID = "mistral"

// Mistral is a provider adapter for the Mistral La Plateforme API.
// Mistral is safe for concurrent use.
type Mistral struct {
	config Config
}

// New creates a new Mistral provider drawing credentials from pool.
func New(pool *keypool.Pool, opts ...Option) *Mistral {
	cfg := Config{
		Credentials: pool,
		Strategy:    keypool.StrategyRandom,
		BaseURL:     DefaultBaseURL,
		HTTPClient:  http.DefaultClient,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return &Mistral{config: cfg}
}

// ID returns the provider identifier.
func (p *Mistral) ID() string {
	return providerID
}

// Models returns the list of available models.
func (p *Mistral) Models() []core.ModelInfo {
	result := make([]core.ModelInfo, len(models))
	copy(result, models)
	return result
}

// DefaultModel returns the first available model.
func (p *Mistral) DefaultModel() core.ModelID {
	if len(models) == 0 {
		return ""
	}
	return models[0].ID
}

// Supports reports whether the provider supports the given feature.
func (p *Mistral) Supports(feature core.Feature) bool {
	switch feature {
	case core.FeatureGenerate, core.FeatureStreaming, core.FeatureSystemMessages:
		return true
	default:
		return false
	}
}

func (p *Mistral) acquire() (*keypool.Credential, error) {
	cred, ok := p.config.Credentials.Select(providerID, p.config.Strategy)
	if !ok {
		return nil, core.NoCredentialsError(providerID)
	}
	return cred, nil
}

func (p *Mistral) reportOutcome(cred *keypool.Credential, err error) {
	if err == nil {
		p.config.Credentials.ReportSuccess(cred)
		return
	}
	if penalizesCredential(err) {
		p.config.Credentials.ReportError(cred)
	}
}

// Generate sends a non-streaming generation request.
func (p *Mistral) Generate(ctx context.Context, req *core.GenerateRequest) (*core.GenerateResponse, error) {
	cred, err := p.acquire()
	if err != nil {
		return nil, err
	}

	resp, err := p.doGenerate(ctx, cred, req)
	p.reportOutcome(cred, err)
	return resp, err
}

// StreamGenerate sends a streaming generation request.
func (p *Mistral) StreamGenerate(ctx context.Context, req *core.GenerateRequest) (*core.GenerateStream, error) {
	cred, err := p.acquire()
	if err != nil {
		return nil, err
	}

	stream, err := p.doStreamGenerate(ctx, cred, req)
	p.reportOutcome(cred, err)
	return stream, err
}

// Compile-time check that Mistral implements Provider.
var _ core.Provider = (*Mistral)(nil)
