package anthropic

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fable-labs/fable/core"
)

func TestStreamGenerate(t *testing.T) {
	events := []string{
		`event: message_start`,
		`data: {"type":"message_start","message":{"id":"msg-123","model":"claude-sonnet-4-5","usage":{"input_tokens":12,"output_tokens":0}}}`,
		`event: content_block_delta`,
		`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hel"}}`,
		`event: content_block_delta`,
		`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"lo"}}`,
		`event: message_delta`,
		`data: {"type":"message_delta","usage":{"output_tokens":2}}`,
		`event: message_stop`,
		`data: {"type":"message_stop"}`,
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, line := range events {
			w.Write([]byte(line + "\n"))
		}
		w.Write([]byte("\n"))
		flusher.Flush()
	}))
	defer server.Close()

	p := New(testPool("test-key"), WithBaseURL(server.URL))
	stream, err := p.StreamGenerate(context.Background(), &core.GenerateRequest{
		Model:    "claude-sonnet-4-5",
		Messages: []core.Message{core.User("Hello")},
	})
	if err != nil {
		t.Fatalf("StreamGenerate() error = %v", err)
	}

	var deltas []string
	resp, err := core.ForwardStream(context.Background(), stream, func(d string) error {
		deltas = append(deltas, d)
		return nil
	})
	if err != nil {
		t.Fatalf("ForwardStream() error = %v", err)
	}

	if len(deltas) != 2 || deltas[0] != "Hel" || deltas[1] != "lo" {
		t.Errorf("deltas = %v, want [Hel lo]", deltas)
	}
	if resp.ID != "msg-123" {
		t.Errorf("ID = %q, want msg-123", resp.ID)
	}
	if resp.Output != "Hello" {
		t.Errorf("Output = %q, want Hello", resp.Output)
	}
	if resp.Usage.PromptTokens != 12 || resp.Usage.CompletionTokens != 2 {
		t.Errorf("Usage = %+v, want 12 in, 2 out", resp.Usage)
	}
}

func TestStreamGenerateVendorErrorEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte(`event: error` + "\n"))
		w.Write([]byte(`data: {"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}` + "\n\n"))
	}))
	defer server.Close()

	p := New(testPool("test-key"), WithBaseURL(server.URL))
	stream, err := p.StreamGenerate(context.Background(), &core.GenerateRequest{
		Model:    "claude-sonnet-4-5",
		Messages: []core.Message{core.User("Hello")},
	})
	if err != nil {
		t.Fatalf("StreamGenerate() error = %v", err)
	}

	if _, err := core.DrainStream(context.Background(), stream); err == nil {
		t.Error("DrainStream() succeeded on a vendor error event")
	}
}
