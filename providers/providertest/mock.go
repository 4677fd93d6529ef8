// Package providertest provides a scriptable in-memory provider for
// tests. It implements core.Provider without any network traffic so
// client, pipeline, and capability behavior can be exercised
// deterministically.
package providertest

import (
	"context"
	"strings"
	"sync"

	"github.com/fable-labs/fable/core"
)

// Mock is a scriptable core.Provider. The zero value answers every
// Generate call with an empty response; script outcomes with Responses,
// Chunks, and Errs. Mock is safe for concurrent use.
type Mock struct {
	// ProviderID overrides the reported ID. Defaults to "mock".
	ProviderID string

	// ModelList overrides the reported models.
	ModelList []core.ModelInfo

	// Streaming controls whether FeatureStreaming is reported.
	Streaming bool

	// Responses are returned by Generate in order; the last one repeats.
	Responses []*core.GenerateResponse

	// Errs are returned by Generate in order, matched by call index.
	// A nil entry means the call succeeds.
	Errs []error

	// Chunks are emitted by StreamGenerate, one Chunk per element.
	Chunks []string

	mu    sync.Mutex
	calls []*core.GenerateRequest
}

// ID returns the provider identifier.
func (m *Mock) ID() string {
	if m.ProviderID != "" {
		return m.ProviderID
	}
	return "mock"
}

// Models returns the scripted model list.
func (m *Mock) Models() []core.ModelInfo {
	if m.ModelList != nil {
		return m.ModelList
	}
	caps := []core.Feature{core.FeatureGenerate, core.FeatureSystemMessages}
	if m.Streaming {
		caps = append(caps, core.FeatureStreaming)
	}
	return []core.ModelInfo{{ID: "mock-model", DisplayName: "Mock Model", Capabilities: caps}}
}

// DefaultModel returns the first scripted model.
func (m *Mock) DefaultModel() core.ModelID {
	models := m.Models()
	if len(models) == 0 {
		return ""
	}
	return models[0].ID
}

// Supports reports whether the provider supports the given feature.
func (m *Mock) Supports(feature core.Feature) bool {
	switch feature {
	case core.FeatureGenerate, core.FeatureSystemMessages:
		return true
	case core.FeatureStreaming:
		return m.Streaming
	default:
		return false
	}
}

// Generate returns the next scripted outcome and records the request.
func (m *Mock) Generate(ctx context.Context, req *core.GenerateRequest) (*core.GenerateResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	idx := len(m.calls)
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if idx < len(m.Errs) && m.Errs[idx] != nil {
		return nil, m.Errs[idx]
	}

	if len(m.Responses) == 0 {
		return &core.GenerateResponse{ID: "mock-resp", Model: req.Model}, nil
	}
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	return m.Responses[idx], nil
}

// StreamGenerate emits the scripted chunks followed by a final response
// assembled from them.
func (m *Mock) StreamGenerate(ctx context.Context, req *core.GenerateRequest) (*core.GenerateStream, error) {
	if !m.Streaming {
		return nil, &core.ProviderError{
			Provider: m.ID(),
			Message:  "streaming not supported",
			Err:      core.ErrNotSupported,
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	chunkCh := make(chan core.Chunk, len(m.Chunks))
	errCh := make(chan error, 1)
	finalCh := make(chan *core.GenerateResponse, 1)

	go func() {
		defer close(chunkCh)
		defer close(errCh)
		defer close(finalCh)

		for _, delta := range m.Chunks {
			select {
			case chunkCh <- core.Chunk{Delta: delta}:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
		finalCh <- &core.GenerateResponse{
			ID:     "mock-stream",
			Model:  req.Model,
			Output: strings.Join(m.Chunks, ""),
		}
	}()

	return &core.GenerateStream{Ch: chunkCh, Err: errCh, Final: finalCh}, nil
}

// Calls returns a snapshot of the requests seen so far.
func (m *Mock) Calls() []*core.GenerateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*core.GenerateRequest, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of requests seen so far.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Compile-time check that Mock implements Provider.
var _ core.Provider = (*Mock)(nil)
