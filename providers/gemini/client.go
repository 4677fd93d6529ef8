package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/fable-labs/fable/core"
	"github.com/fable-labs/fable/keypool"
)

// generatePath builds the endpoint path for a model, e.g.
// /models/gemini-2.0-flash:generateContent.
func (p *Gemini) generatePath(model core.ModelID, stream bool) string {
	verb := "generateContent"
	if stream {
		verb = "streamGenerateContent?alt=sse"
	}
	return fmt.Sprintf("%s/models/%s:%s", p.config.BaseURL, model, verb)
}

// doGenerate performs a non-streaming generation request.
func (p *Gemini) doGenerate(ctx context.Context, cred *keypool.Credential, req *core.GenerateRequest) (*core.GenerateResponse, error) {
	gemReq := buildRequest(req)

	body, err := json.Marshal(gemReq)
	if err != nil {
		return nil, newDecodeError(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.generatePath(req.Model, false), bytes.NewReader(body))
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

	if resp.StatusCode >= 400 {
		return nil, normalizeError(resp.StatusCode, respBody)
	}

	var gemResp geminiResponse
	if err := json.Unmarshal(respBody, &gemResp); err != nil {
		return nil, newDecodeError(err)
	}

	return mapResponse(&gemResp)
}
