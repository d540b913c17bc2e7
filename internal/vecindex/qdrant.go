// Package vecindex is a minimal REST client to Qdrant, the external vector
// index. The index is treated as an opaque capability: it may return fewer
// results than asked for, and an empty index yields an empty list rather
// than an error.
package vecindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/argus-agency/dossier/internal/fault"
)

// Match is one nearest-neighbor result, ordered by descending relevance.
type Match struct {
	Text  string
	Meta  Metadata
	Score float64
}

// Point is a vector plus its document text and provenance, ready for upsert.
type Point struct {
	ID     string
	Vector []float32
	Text   string
	Meta   Metadata
}

type Client struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

func NewClient(url, apiKey, collection string) *Client {
	return &Client{
		url:        strings.TrimRight(url, "/"),
		apiKey:     apiKey,
		collection: collection,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

// SetTestTransport points the client at a test server.
func (c *Client) SetTestTransport(url string) {
	c.url = strings.TrimRight(url, "/")
}

// EnsureCollection creates the collection if missing. Qdrant answers 200 for
// an existing collection with the same schema.
func (c *Client) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fault.New(fault.KindInvalidInput, "invalid dimension %d", dimension)
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return c.send(ctx, http.MethodPut, fmt.Sprintf("%s/collections/%s", c.url, c.collection), body, nil)
}

// Upsert writes points to the index, waiting for them to be indexed.
func (c *Client) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	items := make([]map[string]any, len(points))
	for i, p := range points {
		items[i] = map[string]any{
			"id":     p.ID,
			"vector": p.Vector,
			"payload": map[string]any{
				"text":      p.Text,
				"doc_type":  p.Meta.DocType,
				"source":    p.Meta.Source,
				"group_id":  p.Meta.GroupID,
				"sender":    p.Meta.Sender,
				"role":      p.Meta.Role,
				"timestamp": p.Meta.Timestamp,
			},
		}
	}
	body := map[string]any{"points": items}
	url := fmt.Sprintf("%s/collections/%s/points?wait=true", c.url, c.collection)
	return c.send(ctx, http.MethodPut, url, body, nil)
}

// Query runs a single nearest-neighbor search for the top k matches. Results
// come back in the index's relevance order; fewer than k (including zero) is
// a valid outcome.
func (c *Client) Query(ctx context.Context, vector []float32, k int) ([]Match, error) {
	if k <= 0 {
		k = 5
	}
	body := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", c.url, c.collection)
	if err := c.send(ctx, http.MethodPost, url, body, &resp); err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(resp.Result))
	for _, r := range resp.Result {
		m := Match{Score: r.Score}
		m.Text, _ = r.Payload["text"].(string)
		m.Meta.DocType, _ = r.Payload["doc_type"].(string)
		m.Meta.Source, _ = r.Payload["source"].(string)
		m.Meta.GroupID, _ = r.Payload["group_id"].(string)
		m.Meta.Sender, _ = r.Payload["sender"].(string)
		m.Meta.Role, _ = r.Payload["role"].(string)
		m.Meta.Timestamp, _ = r.Payload["timestamp"].(string)
		matches = append(matches, m)
	}
	return matches, nil
}

func (c *Client) send(ctx context.Context, method, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fault.Wrap(fault.KindServiceUnavailable, err, "qdrant %s %s", method, url)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fault.New(fault.KindServiceUnavailable, "qdrant %s %s returned %s", method, url, resp.Status)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fault.Wrap(fault.KindServiceUnavailable, err, "decode qdrant response")
		}
	}
	return nil
}
