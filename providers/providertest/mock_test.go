package providertest

import (
	"context"
	"errors"
	"testing"

	"github.com/fable-labs/fable/core"
)

func TestMockScriptedResponses(t *testing.T) {
	mock := &Mock{
		Responses: []*core.GenerateResponse{
			{ID: "r1", Output: "first"},
			{ID: "r2", Output: "second"},
		},
	}

	req := &core.GenerateRequest{Model: "mock-model", Messages: []core.Message{core.User("hi")}}

	for _, want := range []string{"first", "second", "second"} {
		resp, err := mock.Generate(context.Background(), req)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if resp.Output != want {
			t.Errorf("Output = %q, want %q", resp.Output, want)
		}
	}

	if mock.CallCount() != 3 {
		t.Errorf("CallCount() = %d, want 3", mock.CallCount())
	}
}

func TestMockScriptedErrors(t *testing.T) {
	boom := errors.New("scripted failure")
	mock := &Mock{
		Errs:      []error{boom, nil},
		Responses: []*core.GenerateResponse{{Output: "ok"}},
	}

	req := &core.GenerateRequest{Model: "mock-model"}

	if _, err := mock.Generate(context.Background(), req); !errors.Is(err, boom) {
		t.Errorf("first Generate() error = %v, want scripted error", err)
	}
	if resp, err := mock.Generate(context.Background(), req); err != nil || resp.Output != "ok" {
		t.Errorf("second Generate() = %v, %v, want ok", resp, err)
	}
}

func TestMockStreamingChunks(t *testing.T) {
	mock := &Mock{Streaming: true, Chunks: []string{"Hel", "lo"}}

	stream, err := mock.StreamGenerate(context.Background(), &core.GenerateRequest{Model: "mock-model"})
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
		t.Errorf("deltas = %v, want exactly [Hel lo] in order", deltas)
	}
	if resp.Output != "Hello" {
		t.Errorf("Output = %q, want Hello", resp.Output)
	}
}

func TestMockStreamingUnsupported(t *testing.T) {
	mock := &Mock{}

	if _, err := mock.StreamGenerate(context.Background(), &core.GenerateRequest{}); !errors.Is(err, core.ErrNotSupported) {
		t.Errorf("StreamGenerate() error = %v, want ErrNotSupported", err)
	}
}
