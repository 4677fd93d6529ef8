package mistral

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/fable-labs/fable/core"
	"github.com/fable-labs/fable/keypool"
)

// completionsPath is the API endpoint for chat completions.
const completionsPath = "/chat/completions"

// doGenerate performs a non-streaming generation request.
func (p *Mistral) doGenerate(ctx context.Context, cred *keypool.Credential, req *core.GenerateRequest) (*core.GenerateResponse, error) {
	mReq := buildRequest(req, false)

	body, err := json.Marshal(mReq)
	if err != nil {
		return nil, newDecodeError(err)
	}

	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
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
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newNetworkError(err)
	}

	requestID := resp.Header.Get("x-request-id")

	if resp.StatusCode >= 400 {
		return nil, normalizeError(resp.StatusCode, resp.Header, respBody, requestID)
	}

	var mResp mistralResponse
	if err := json.Unmarshal(respBody, &mResp); err != nil {
		return nil, newDecodeError(err)
	}

	return mapResponse(&mResp)
}

// buildHeaders constructs the HTTP headers for an API request using the
// selected credential.
func (p *Mistral) buildHeaders(cred *keypool.Credential) http.Header {
	headers := make(http.Header)
	headers.Set("Authorization", "Bearer "+cred.Key.Expose())
	headers.Set("Content-Type", "application/json")

	for key, values := range p.config.Headers {
		for _, v := range values {
			headers.Add(key, v)
		}
	}

	return headers
}
