package mistral

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fable-labs/fable/core"
	"github.com/fable-labs/fable/keypool"
)

func testPool(key string) *keypool.Pool {
	pool := keypool.New(keypool.WithEnvLookup(func(string) (string, bool) { return "", false }))
	pool.Add(providerID, "test", key)
	return pool
}

func TestGenerateSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Path = %q, want /chat/completions", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Authorization header incorrect")
		}

		// The token cap rides the max_tokens field on this API.
		var req mistralRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.MaxTokens == nil || *req.MaxTokens != 100 {
			t.Errorf("max_tokens = %v, want 100", req.MaxTokens)
		}

		json.NewEncoder(w).Encode(mistralResponse{
			ID:    "cmpl-1",
			Model: "mistral-large-latest",
			Choices: []mistralChoice{{
				Message:      mistralMessage{Role: "assistant", Content: "Bonjour!"},
				FinishReason: "stop",
			}},
			Usage: mistralUsage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5},
		})
	}))
	defer server.Close()

	maxTokens := 100
	p := New(testPool("test-key"), WithBaseURL(server.URL))
	resp, err := p.Generate(context.Background(), &core.GenerateRequest{
		Model:     "mistral-large-latest",
		Messages:  []core.Message{core.User("Bonjour")},
		MaxTokens: &maxTokens,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if resp.Output != "Bonjour!" {
		t.Errorf("Output = %q", resp.Output)
	}
	if resp.Usage.TotalTokens != 5 {
		t.Errorf("TotalTokens = %d, want 5", resp.Usage.TotalTokens)
	}
}

func TestGenerateAuthErrorPenalizesCredential(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "Unauthorized", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	pool := testPool("bad-key")
	p := New(pool, WithBaseURL(server.URL))
	_, err := p.Generate(context.Background(), &core.GenerateRequest{
		Model:    "mistral-large-latest",
		Messages: []core.Message{core.User("hi")},
	})

	if !errors.Is(err, core.ErrUnauthorized) {
		t.Fatalf("Generate() error = %v, want ErrUnauthorized", err)
	}
	if got := pool.Credentials(providerID)[0].ErrorCount; got != 1 {
		t.Errorf("ErrorCount = %d, want 1", got)
	}
}

func TestStreamGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		lines := []string{
			`data: {"id":"cmpl-1","model":"mistral-large-latest","choices":[{"index":0,"delta":{"content":"Bon"}}]}`,
			`data: {"id":"cmpl-1","model":"mistral-large-latest","choices":[{"index":0,"delta":{"content":"jour"}}],"usage":{"prompt_tokens":1,"completion_tokens":2,"total_tokens":3}}`,
			`data: [DONE]`,
		}
		for _, line := range lines {
			w.Write([]byte(line + "\n\n"))
		}
	}))
	defer server.Close()

	p := New(testPool("test-key"), WithBaseURL(server.URL))
	stream, err := p.StreamGenerate(context.Background(), &core.GenerateRequest{
		Model:    "mistral-large-latest",
		Messages: []core.Message{core.User("Bonjour")},
	})
	if err != nil {
		t.Fatalf("StreamGenerate() error = %v", err)
	}

	resp, err := core.DrainStream(context.Background(), stream)
	if err != nil {
		t.Fatalf("DrainStream() error = %v", err)
	}
	if resp.Output != "Bonjour" {
		t.Errorf("Output = %q, want Bonjour", resp.Output)
	}
	if resp.Usage.TotalTokens != 3 {
		t.Errorf("TotalTokens = %d, want 3", resp.Usage.TotalTokens)
	}
}
