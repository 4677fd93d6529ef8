package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/fable-labs/fable/core"
	"github.com/fable-labs/fable/keypool"
)

// messagesPath is the API endpoint for messages.
const messagesPath = "/v1/messages"

// doGenerate performs a non-streaming generation request.
func (p *Anthropic) doGenerate(ctx context.Context, cred *keypool.Credential, req *core.GenerateRequest) (*core.GenerateResponse, error) {
	antReq := buildRequest(req, false)

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
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newNetworkError(err)
	}

	requestID := resp.Header.Get("request-id")

	if resp.StatusCode >= 400 {
		return nil, normalizeError(resp.StatusCode, resp.Header, respBody, requestID)
	}

	var antResp anthropicResponse
	if err := json.Unmarshal(respBody, &antResp); err != nil {
		return nil, newDecodeError(err)
	}

	return mapResponse(&antResp)
}
