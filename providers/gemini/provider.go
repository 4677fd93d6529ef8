package gemini

import (
	"context"
	"net/http"

	"github.com/fable-labs/fable/core"
	"github.com/fable-labs/fable/keypool"
)

// providerID is the short name the provider registers under.
const providerID = "gemini"

// Gemini is a provider adapter for the Google Gemini API.
// Gemini is safe for concurrent use.
//
// Gemini has no first-class system message in the conversation itself:
// the system prompt is folded into a leading user/model exchange (see
// mapping.go).
type Gemini struct {
	config Config
}

// New creates a new Gemini provider drawing credentials from pool.
func New(pool *keypool.Pool, opts ...Option) *Gemini {
	cfg := Config{
		Credentials: pool,
		Strategy:    keypool.StrategyRandom,
		BaseURL:     DefaultBaseURL,
		HTTPClient:  http.DefaultClient,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return &Gemini{config: cfg}
}

// ID returns the provider identifier.
func (p *Gemini) ID() string {
	return providerID
}

// Models returns the list of available models.
func (p *Gemini) Models() []core.ModelInfo {
	// Return a copy to prevent mutation
	result := make([]core.ModelInfo, len(models))
	copy(result, models)
	return result
}

// DefaultModel returns the first available model.
func (p *Gemini) DefaultModel() core.ModelID {
	if len(models) == 0 {
		return ""
	}
	return models[0].ID
}

// Supports reports whether the provider supports the given feature.
func (p *Gemini) Supports(feature core.Feature) bool {
	switch feature {
	case core.FeatureGenerate, core.FeatureStreaming:
		return true
	default:
		return false
	}
}

// buildHeaders constructs the HTTP headers for an API request using the
// selected credential.
func (p *Gemini) buildHeaders(cred *keypool.Credential) http.Header {
	headers := make(http.Header)
	headers.Set("x-goog-api-key", cred.Key.Expose())
	headers.Set("Content-Type", "application/json")

	for key, values := range p.config.Headers {
		for _, v := range values {
			headers.Add(key, v)
		}
	}

	return headers
}

func (p *Gemini) acquire() (*keypool.Credential, error) {
	cred, ok := p.config.Credentials.Select(providerID, p.config.Strategy)
	if !ok {
		return nil, core.NoCredentialsError(providerID)
	}
	return cred, nil
}

func (p *Gemini) reportOutcome(cred *keypool.Credential, err error) {
	if err == nil {
		p.config.Credentials.ReportSuccess(cred)
		return
	}
	if penalizesCredential(err) {
		p.config.Credentials.ReportError(cred)
	}
}

// Generate sends a non-streaming generation request.
func (p *Gemini) Generate(ctx context.Context, req *core.GenerateRequest) (*core.GenerateResponse, error) {
	cred, err := p.acquire()
	if err != nil {
		return nil, err
	}

	resp, err := p.doGenerate(ctx, cred, req)
	p.reportOutcome(cred, err)
	return resp, err
}

// StreamGenerate sends a streaming generation request.
func (p *Gemini) StreamGenerate(ctx context.Context, req *core.GenerateRequest) (*core.GenerateStream, error) {
	cred, err := p.acquire()
	if err != nil {
		return nil, err
	}

	stream, err := p.doStreamGenerate(ctx, cred, req)
	p.reportOutcome(cred, err)
	return stream, err
}

// Compile-time check that Gemini implements Provider.
var _ core.Provider = (*Gemini)(nil)
