// Package llm is the client for the external generation service (Anthropic
// Messages API). Failures map to the service-unavailable fault; retry policy
// belongs to the caller.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/argus-agency/dossier/internal/fault"
)

const defaultAPIURL = "https://api.anthropic.com/v1/messages"

type Client struct {
	apiURL string
	apiKey string
	model  string
	client *http.Client
}

func NewClient(apiKey, model string) *Client {
	return &Client{
		apiURL: defaultAPIURL,
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

// SetTestTransport points the client at a test server.
func (c *Client) SetTestTransport(url string) {
	c.apiURL = url
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type response struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends a single-turn prompt and returns the text response. The
// service has an implicit maximum output length; a response cut off by it
// comes back verbatim for the recovery layer to deal with.
func (c *Client) Complete(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	reqBody := request{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  []message{{Role: "user", Content: prompt}},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fault.Wrap(fault.KindServiceUnavailable, err, "generation call failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fault.Wrap(fault.KindServiceUnavailable, err, "read generation response")
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Type != "" {
			return "", fault.New(fault.KindServiceUnavailable, "api error %d: %s: %s",
				resp.StatusCode, errResp.Error.Type, errResp.Error.Message)
		}
		return "", fault.New(fault.KindServiceUnavailable, "api error %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fault.Wrap(fault.KindServiceUnavailable, err, "unmarshal generation response")
	}
	if len(apiResp.Content) == 0 {
		return "", fault.New(fault.KindServiceUnavailable, "empty response content")
	}
	return apiResp.Content[0].Text, nil
}
