package core

import (
	"context"
	"errors"
	"testing"
)

// scriptedStream builds a GenerateStream that emits the given deltas,
// then either the error or the final response.
func scriptedStream(deltas []string, final *GenerateResponse, err error) *GenerateStream {
	chunkCh := make(chan Chunk, len(deltas))
	errCh := make(chan error, 1)
	finalCh := make(chan *GenerateResponse, 1)

	for _, d := range deltas {
		chunkCh <- Chunk{Delta: d}
	}
	if err != nil {
		errCh <- err
	} else if final != nil {
		finalCh <- final
	}
	close(chunkCh)
	close(errCh)
	close(finalCh)

	return &GenerateStream{Ch: chunkCh, Err: errCh, Final: finalCh}
}

func TestForwardStreamDeliversChunksInOrder(t *testing.T) {
	s := scriptedStream([]string{"Hel", "lo"}, &GenerateResponse{ID: "r1"}, nil)

	var got []string
	resp, err := ForwardStream(context.Background(), s, func(delta string) error {
		got = append(got, delta)
		return nil
	})
	if err != nil {
		t.Fatalf("ForwardStream() error = %v", err)
	}

	if len(got) != 2 || got[0] != "Hel" || got[1] != "lo" {
		t.Errorf("callback calls = %v, want [Hel lo]", got)
	}
	if resp.Output != "Hello" {
		t.Errorf("Output = %q, want accumulated Hello", resp.Output)
	}
}

func TestForwardStreamError(t *testing.T) {
	streamErr := errors.New("mid-stream failure")
	s := scriptedStream([]string{"partial"}, nil, streamErr)

	_, err := ForwardStream(context.Background(), s, func(string) error { return nil })
	if !errors.Is(err, streamErr) {
		t.Errorf("ForwardStream() error = %v, want the stream error", err)
	}
}

func TestForwardStreamErrorArrivesAfterDeltas(t *testing.T) {
	// The error lands on an unbuffered channel only after Ch has closed,
	// as happens when a wrapper forwards it asynchronously.
	streamErr := errors.New("late failure")
	chunkCh := make(chan Chunk)
	errCh := make(chan error)
	finalCh := make(chan *GenerateResponse)
	go func() {
		chunkCh <- Chunk{Delta: "partial"}
		close(chunkCh)
		errCh <- streamErr
		close(errCh)
		close(finalCh)
	}()
	s := &GenerateStream{Ch: chunkCh, Err: errCh, Final: finalCh}

	_, err := ForwardStream(context.Background(), s, func(string) error { return nil })
	if !errors.Is(err, streamErr) {
		t.Errorf("ForwardStream() error = %v, want the late stream error", err)
	}
}

func TestForwardStreamCallbackStops(t *testing.T) {
	stop := errors.New("consumer gave up")
	s := scriptedStream([]string{"a", "b", "c"}, nil, nil)

	calls := 0
	_, err := ForwardStream(context.Background(), s, func(string) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Errorf("ForwardStream() error = %v, want callback error", err)
	}
	if calls != 1 {
		t.Errorf("callback ran %d times after returning an error, want 1", calls)
	}
}

func TestForwardStreamCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := scriptedStream(nil, &GenerateResponse{}, nil)
	if _, err := ForwardStream(ctx, s, func(string) error { return nil }); !errors.Is(err, context.Canceled) {
		t.Errorf("ForwardStream() error = %v, want context.Canceled", err)
	}
}

func TestDrainStreamAccumulates(t *testing.T) {
	s := scriptedStream([]string{"one ", "two"}, &GenerateResponse{ID: "r1", Usage: TokenUsage{TotalTokens: 7}}, nil)

	resp, err := DrainStream(context.Background(), s)
	if err != nil {
		t.Fatalf("DrainStream() error = %v", err)
	}
	if resp.Output != "one two" {
		t.Errorf("Output = %q, want one two", resp.Output)
	}
	if resp.Usage.TotalTokens != 7 {
		t.Errorf("TotalTokens = %d, want 7", resp.Usage.TotalTokens)
	}
}

func TestDrainStreamError(t *testing.T) {
	streamErr := errors.New("boom")
	s := scriptedStream([]string{"partial"}, nil, streamErr)

	if _, err := DrainStream(context.Background(), s); !errors.Is(err, streamErr) {
		t.Errorf("DrainStream() error = %v, want the stream error", err)
	}
}

func TestDrainStreamErrorArrivesAfterDeltas(t *testing.T) {
	streamErr := errors.New("late failure")
	chunkCh := make(chan Chunk)
	errCh := make(chan error)
	finalCh := make(chan *GenerateResponse)
	go func() {
		chunkCh <- Chunk{Delta: "partial"}
		close(chunkCh)
		errCh <- streamErr
		close(errCh)
		close(finalCh)
	}()
	s := &GenerateStream{Ch: chunkCh, Err: errCh, Final: finalCh}

	_, err := DrainStream(context.Background(), s)
	if !errors.Is(err, streamErr) {
		t.Errorf("DrainStream() error = %v, want the late stream error", err)
	}
}

func TestSingleChunkStream(t *testing.T) {
	resp := &GenerateResponse{ID: "r1", Output: "whole thing"}
	s := SingleChunkStream(resp)

	var deltas []string
	got, err := ForwardStream(context.Background(), s, func(d string) error {
		deltas = append(deltas, d)
		return nil
	})
	if err != nil {
		t.Fatalf("ForwardStream() error = %v", err)
	}
	if len(deltas) != 1 || deltas[0] != "whole thing" {
		t.Errorf("deltas = %v, want one delta with the whole output", deltas)
	}
	if got != resp {
		t.Error("final response is not the wrapped response")
	}
}

func TestSingleChunkStreamEmptyOutput(t *testing.T) {
	s := SingleChunkStream(&GenerateResponse{ID: "r1"})

	calls := 0
	if _, err := ForwardStream(context.Background(), s, func(string) error { calls++; return nil }); err != nil {
		t.Fatalf("ForwardStream() error = %v", err)
	}
	if calls != 0 {
		t.Errorf("callback ran %d times for empty output, want 0", calls)
	}
}
