package core

import (
	"context"
	"strings"
)

// GenerateStream represents a streaming response from a provider.
//
// Channel Rules:
//   - Providers MUST close Ch, Err, and Final when finished
//   - On context cancellation, providers MUST stop consuming the underlying
//     transport promptly and close all channels
//   - Err channel emits at most one error
//   - Final channel emits exactly once on success (or zero times on setup
//     failure)
//   - If providers cannot compute Usage for streaming, they MAY leave it
//     zeroed
type GenerateStream struct {
	// Ch emits text deltas in arrival order. Closed when the stream ends.
	Ch <-chan Chunk

	// Err emits at most one error. Closed when the stream ends.
	Err <-chan error

	// Final is sent exactly once (or zero if setup fails) after stream
	// completion. Providers may send a partial GenerateResponse with
	// Output empty; readers fall back to the accumulated deltas.
	Final <-chan *GenerateResponse
}

// DrainStream accumulates all deltas and returns the final GenerateResponse.
// Blocks until the stream completes or the context cancels.
func DrainStream(ctx context.Context, s *GenerateStream) (*GenerateResponse, error) {
	if s == nil {
		return nil, ErrBadRequest
	}

	var accumulated strings.Builder
	var streamErr error
	var finalResp *GenerateResponse

	// Closed channels are parked by setting the variable to nil so the
	// select stops spinning on them.
	chunkCh, errCh, finalCh := s.Ch, s.Err, s.Final
	for chunkCh != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case chunk, ok := <-chunkCh:
			if !ok {
				chunkCh = nil
				continue
			}
			accumulated.WriteString(chunk.Delta)

		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				streamErr = err
			}
			// Continue draining Ch even after error.

		case resp, ok := <-finalCh:
			if !ok {
				finalCh = nil
				continue
			}
			finalResp = resp
		}
	}

	// The error may still be in flight after Ch closes. Wait for Err to
	// deliver or close before trusting the outcome.
	if streamErr == nil && errCh != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case err, ok := <-errCh:
			if ok && err != nil {
				streamErr = err
			}
		}
	}

	if streamErr != nil {
		return nil, streamErr
	}

	// Wait for the final response.
	if finalResp == nil && finalCh != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case resp, ok := <-finalCh:
			if ok {
				finalResp = resp
			}
		}
	}

	if finalResp == nil {
		finalResp = &GenerateResponse{
			Output: accumulated.String(),
		}
	} else if finalResp.Output == "" {
		finalResp.Output = accumulated.String()
	}

	return finalResp, nil
}

// ChunkFunc receives one UTF-8 text fragment per invocation.
// Returning an error stops the forwarding loop.
type ChunkFunc func(delta string) error

// ForwardStream delivers every chunk to fn in arrival order and returns the
// final GenerateResponse once the provider signals completion. This adapts
// the channel contract to consumers that want a callback per fragment.
//
// Cancellation is checked between chunks; once the context is done the
// stream is abandoned and ctx.Err() returned.
func ForwardStream(ctx context.Context, s *GenerateStream, fn ChunkFunc) (*GenerateResponse, error) {
	if s == nil || fn == nil {
		return nil, ErrBadRequest
	}

	var accumulated strings.Builder
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case chunk, ok := <-s.Ch:
			if !ok {
				return finishForward(ctx, s, &accumulated)
			}
			accumulated.WriteString(chunk.Delta)
			if err := fn(chunk.Delta); err != nil {
				return nil, err
			}
		}
	}
}

// finishForward resolves the stream outcome after the delta channel closed.
// The single error may arrive after Ch is already closed (wrappers forward
// it asynchronously), so this blocks until Err delivers or closes before
// consulting Final.
func finishForward(ctx context.Context, s *GenerateStream, accumulated *strings.Builder) (*GenerateResponse, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err, ok := <-s.Err:
		if ok && err != nil {
			return nil, err
		}
	}

	var finalResp *GenerateResponse
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case resp, ok := <-s.Final:
		if ok {
			finalResp = resp
		}
	}

	if finalResp == nil {
		finalResp = &GenerateResponse{}
	}
	if finalResp.Output == "" {
		finalResp.Output = accumulated.String()
	}
	return finalResp, nil
}

// SingleChunkStream wraps a complete response as a one-chunk stream.
// Used as the fallback for providers without streaming support: the entire
// output is delivered through a single delta followed by the final response.
func SingleChunkStream(resp *GenerateResponse) *GenerateStream {
	chunkCh := make(chan Chunk, 1)
	errCh := make(chan error)
	finalCh := make(chan *GenerateResponse, 1)

	if resp != nil && resp.Output != "" {
		chunkCh <- Chunk{Delta: resp.Output}
	}
	finalCh <- resp
	close(chunkCh)
	close(errCh)
	close(finalCh)

	return &GenerateStream{
		Ch:    chunkCh,
		Err:   errCh,
		Final: finalCh,
	}
}
