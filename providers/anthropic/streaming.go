package anthropic

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
	"github.com/fable-labs/fable/providers/internal/normalize"
)

// doStreamGenerate performs a streaming generation request.
func (p *Anthropic) doStreamGenerate(ctx context.Context, cred *keypool.Credential, req *core.GenerateRequest) (*core.GenerateStream, error) {
	antReq := buildRequest(req, true)

	body, err := json.Marshal(antReq)
	if err != nil {
		return nil, newDecodeError(err)
	}

	url := p.config.BaseURL + messagesPath
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

	requestID := resp.Header.Get("request-id")

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

// processSSEStream reads the SSE event stream and emits chunks.
func (p *Anthropic) processSSEStream(
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
	var usage anthropicUsage

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
		if line == "" || strings.HasPrefix(line, "event:") {
			continue
		}
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))

		var event anthropicStreamEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			errCh <- newDecodeError(err)
			return
		}

		switch event.Type {
		case "message_start":
			if event.Message != nil {
				responseID = event.Message.ID
				responseModel = event.Message.Model
				usage = event.Message.Usage
			}

		case "content_block_delta":
			if event.Delta != nil && event.Delta.Type == "text_delta" && event.Delta.Text != "" {
				select {
				case chunkCh <- core.Chunk{Delta: event.Delta.Text}:
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				}
			}

		case "message_delta":
			if event.Usage != nil {
				usage.OutputTokens = event.Usage.OutputTokens
			}

		case "message_stop":
			goto done

		case "error":
			if event.Error != nil {
				errCh <- normalize.ProviderError(providerID, 0, "", event.Error.Type, event.Error.Message, core.ErrServer)
				return
			}
		}
	}

done:
	finalCh <- &core.GenerateResponse{
		ID:    responseID,
		Model: core.ModelID(responseModel),
		Usage: core.TokenUsage{
			PromptTokens:     usage.InputTokens,
			CompletionTokens: usage.OutputTokens,
			TotalTokens:      usage.InputTokens + usage.OutputTokens,
		},
	}
}
