package openai

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

// doneSentinel terminates an OpenAI SSE stream.
const doneSentinel = "[DONE]"

// doStreamGenerate performs a streaming generation request.
func (p *OpenAI) doStreamGenerate(ctx context.Context, cred *keypool.Credential, req *core.GenerateRequest) (*core.GenerateStream, error) {
	oaReq := buildRequest(req, true)

	body, err := json.Marshal(oaReq)
	if err != nil {
		return nil, newDecodeError(err)
	}

	url := p.config.BaseURL + completionsPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
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

	requestID := resp.Header.Get("x-request-id")

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		return nil, normalizeError(resp.StatusCode, resp.Header, respBody, requestID)
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
func (p *OpenAI) processSSEStream(
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
	var usage openAIUsage

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
		if payload == doneSentinel {
			break
		}

		var chunk openAIStreamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			errCh <- newDecodeError(err)
			return
		}

		if chunk.ID != "" {
			responseID = chunk.ID
		}
		if chunk.Model != "" {
			responseModel = chunk.Model
		}
		if chunk.Usage != nil {
			usage = *chunk.Usage
		}

		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			select {
			case chunkCh <- core.Chunk{Delta: chunk.Choices[0].Delta.Content}:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
	}

	finalCh <- &core.GenerateResponse{
		ID:    responseID,
		Model: core.ModelID(responseModel),
		Usage: core.TokenUsage{
			PromptTokens:     usage.PromptTokens,
			CompletionTokens: usage.CompletionTokens,
			TotalTokens:      usage.TotalTokens,
		},
	}
}
