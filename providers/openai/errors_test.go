package openai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fable-labs/fable/core"
)

func errorServer(status int, headers map[string]string, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestErrorNormalization(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
	}{
		{
			name:     "unauthorized",
			status:   401,
			body:     `{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error", "code": "invalid_api_key"}}`,
			sentinel: core.ErrUnauthorized,
		},
		{
			name:     "rate limited",
			status:   429,
			body:     `{"error": {"message": "Rate limit reached", "type": "rate_limit_error"}}`,
			sentinel: core.ErrRateLimited,
		},
		{
			name:     "bad request",
			status:   400,
			body:     `{"error": {"message": "Invalid value for temperature", "type": "invalid_request_error"}}`,
			sentinel: core.ErrBadRequest,
		},
		{
			name:     "server error",
			status:   500,
			body:     `{"error": {"message": "The server had an error"}}`,
			sentinel: core.ErrServer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := errorServer(tt.status, nil, tt.body)
			defer server.Close()

			p := New(testPool("test-key"), WithBaseURL(server.URL))
			_, err := p.Generate(context.Background(), &core.GenerateRequest{
				Model:    "gpt-4o",
				Messages: []core.Message{core.User("Hello")},
			})

			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("Generate() error = %v, want %v", err, tt.sentinel)
			}

			var pe *core.ProviderError
			if !errors.As(err, &pe) {
				t.Fatalf("error is %T, want *ProviderError", err)
			}
			if pe.Provider != "openai" {
				t.Errorf("Provider = %q, want openai", pe.Provider)
			}
			if pe.Status != tt.status {
				t.Errorf("Status = %d, want %d", pe.Status, tt.status)
			}
		})
	}
}

func TestRateLimitRetryAfterHint(t *testing.T) {
	server := errorServer(429,
		map[string]string{"Retry-After": "7"},
		`{"error": {"message": "Rate limit reached", "type": "rate_limit_error"}}`,
	)
	defer server.Close()

	p := New(testPool("test-key"), WithBaseURL(server.URL))
	_, err := p.Generate(context.Background(), &core.GenerateRequest{
		Model:    "gpt-4o",
		Messages: []core.Message{core.User("Hello")},
	})

	hint, ok := core.RetryAfter(err)
	if !ok || hint != 7*time.Second {
		t.Errorf("RetryAfter() = %v, %v, want 7s hint", hint, ok)
	}
}

func TestCredentialPenalizedOnlyForAuth(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantCount int
	}{
		{"auth error counts", 401, `{"error": {"message": "bad key"}}`, 1},
		{"rate limit spares the key", 429, `{"error": {"message": "slow down"}}`, 0},
		{"server error spares the key", 503, `{"error": {"message": "overloaded"}}`, 0},
		{"bad request spares the key", 400, `{"error": {"message": "bad shape"}}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := errorServer(tt.status, nil, tt.body)
			defer server.Close()

			pool := testPool("test-key")
			p := New(pool, WithBaseURL(server.URL))
			p.Generate(context.Background(), &core.GenerateRequest{
				Model:    "gpt-4o",
				Messages: []core.Message{core.User("Hello")},
			})

			cred := pool.Credentials(providerID)[0]
			if cred.ErrorCount != tt.wantCount {
				t.Errorf("ErrorCount = %d, want %d", cred.ErrorCount, tt.wantCount)
			}
		})
	}
}

func TestRequestIDCaptured(t *testing.T) {
	server := errorServer(500,
		map[string]string{"x-request-id": "req-err-1"},
		`{"error": {"message": "boom"}}`,
	)
	defer server.Close()

	p := New(testPool("test-key"), WithBaseURL(server.URL))
	_, err := p.Generate(context.Background(), &core.GenerateRequest{
		Model:    "gpt-4o",
		Messages: []core.Message{core.User("Hello")},
	})

	var pe *core.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("error is %T, want *ProviderError", err)
	}
	if pe.RequestID != "req-err-1" {
		t.Errorf("RequestID = %q, want req-err-1", pe.RequestID)
	}
}
