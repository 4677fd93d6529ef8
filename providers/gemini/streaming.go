package gemini

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/fable-labs/fable/core"
	"github.com/fable-labs/fable/keypool"
)

// doStreamGenerate performs a streaming generation request.
// Gemini emits SSE data lines each holding a complete response fragment;
// the stream ends at transport exhaustion rather than a sentinel.
func (p *Gemini) doStreamGenerate(ctx context.Context, cred *keypool.Credential, req *core.GenerateRequest) (*core.GenerateStream, error) {
	gemReq := buildRequest(req)

	body, err := json.Marshal(gemReq)
	if err != nil {
		return nil, newDecodeError(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.generatePath(req.Model, true), bytes.NewReader(body))
	if err != nil {
		return nil, newNetworkError(err)
	}

	for key, values := range p.buildHeaders(cred) {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	resp, err := p.config.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, newNetworkError(err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		return nil, normalizeError(resp.StatusCode, respBody)
	}

	chunkCh := make(chan core.Chunk, 100)
	errCh := make(chan error, 1)
	finalCh := make(chan *core.GenerateResponse, 1)

	go p.processSSEStream(ctx, resp.Body, chunkCh, errCh, finalCh)

	return &core.GenerateStream{
		Ch:    chunkCh,
		Err:   errCh,
		Final: finalCh,
	}, nil
}

// processSSEStream reads the SSE stream and emits chunks.
func (p *Gemini) processSSEStream(
	ctx context.Context,
	body io.ReadCloser,
	chunkCh chan<- core.Chunk,
	errCh chan<- error,
	finalCh chan<- *core.GenerateResponse,
) {
	defer body.Close()
	defer close(chunkCh)
	defer close(errCh)
	defer close(finalCh)

	reader := bufio.NewReader(body)

	var responseID string
	var responseModel string
	var usage geminiUsage

	for {
		// Stop consuming the transport once cancelled.
		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
			return
		default:
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			errCh <- newNetworkError(err)
			return
		}

		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))

		var fragment geminiResponse
		if err := json.Unmarshal([]byte(payload), &fragment); err != nil {
			errCh <- newDecodeError(err)
			return
		}

		if fragment.ResponseID != "" {
			responseID = fragment.ResponseID
		}
		if fragment.ModelVersion != "" {
			responseModel = fragment.ModelVersion
		}
		if fragment.UsageMetadata.TotalTokenCount > 0 {
			usage = fragment.UsageMetadata
		}

		if len(fragment.Candidates) > 0 {
			for _, part := range fragment.Candidates[0].Content.Parts {
				if part.Text == "" {
					continue
				}
				select {
				case chunkCh <- core.Chunk{Delta: part.Text}:
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				}
			}
		}
	}

	finalCh <- &core.GenerateResponse{
		ID:    responseID,
		Model: core.ModelID(responseModel),
		Usage: core.TokenUsage{
			PromptTokens:     usage.PromptTokenCount,
			CompletionTokens: usage.CandidatesTokenCount,
			TotalTokens:      usage.TotalTokenCount,
		},
	}
}
