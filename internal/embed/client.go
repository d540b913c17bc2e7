// Package embed is the gateway to the external embedding service. It adds
// input validation and uniform error mapping on top of the service call;
// retry policy, if any, belongs to the caller.
package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/argus-agency/dossier/internal/fault"
)

// Client talks to an OpenAI-compatible embeddings endpoint.
type Client struct {
	baseURL   string
	apiKey    string
	model     string
	dimension int
	client    *http.Client
}

func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// SetTestTransport points the client at a test server.
func (c *Client) SetTestTransport(url string) {
	c.baseURL = strings.TrimRight(url, "/")
}

// Dimension reports the vector dimensionality observed on the first
// successful call, or 0 before any call has completed.
func (c *Client) Dimension() int { return c.dimension }

type embedRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed converts text into a fixed-length vector. Text that is empty after
// trimming fails with an invalid-input fault before any network call.
// Identical text is re-embedded on every call; there is no caching.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fault.New(fault.KindInvalidInput, "cannot embed empty text")
	}

	body, err := json.Marshal(embedRequest{Input: text, Model: c.model})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fault.Wrap(fault.KindServiceUnavailable, err, "embedding call failed")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fault.Wrap(fault.KindServiceUnavailable, err, "read embedding response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fault.New(fault.KindServiceUnavailable, "embedding service returned %s", resp.Status)
	}

	var out embedResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fault.Wrap(fault.KindServiceUnavailable, err, "decode embedding response")
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, fault.New(fault.KindServiceUnavailable, "no embedding returned")
	}

	vec := out.Data[0].Embedding
	if c.dimension == 0 {
		c.dimension = len(vec)
	}
	return vec, nil
}
