package vecindex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/argus-agency/dossier/internal/fault"
)

func TestQuery_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/dossier/points/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if req["limit"].(float64) != 3 {
			t.Errorf("limit = %v", req["limit"])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{
				{
					"score": 0.92,
					"payload": map[string]any{
						"text":      "Submit report by 5 PM",
						"doc_type":  "chat_log",
						"group_id":  "GRP001",
						"sender":    "Insp. Rao",
						"role":      "Inspector",
						"timestamp": "12/05/24, 10:15",
					},
				},
				{
					"score":   0.41,
					"payload": map[string]any{"text": "CDR rows"},
				},
			},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "", "dossier")

	matches, err := c.Query(context.Background(), []float32{0.1, 0.2}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Text != "Submit report by 5 PM" {
		t.Errorf("text = %q", matches[0].Text)
	}
	if matches[0].Meta.Sender != "Insp. Rao" || matches[0].Meta.Role != "Inspector" {
		t.Errorf("meta = %+v", matches[0].Meta)
	}
	if matches[0].Score != 0.92 {
		t.Errorf("score = %f", matches[0].Score)
	}
	if matches[1].Meta.DocType != "" {
		t.Errorf("missing payload fields must stay empty, got %q", matches[1].Meta.DocType)
	}
}

func TestQuery_EmptyIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"result": []any{}})
	}))
	defer server.Close()

	c := NewClient(server.URL, "", "dossier")

	matches, err := c.Query(context.Background(), []float32{0.1}, 5)
	if err != nil {
		t.Fatalf("empty index must not error: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected 0 matches, got %d", len(matches))
	}
}

func TestQuery_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(server.URL, "", "dossier")

	_, err := c.Query(context.Background(), []float32{0.1}, 5)
	if err == nil {
		t.Fatal("expected error")
	}
	if !fault.Is(err, fault.KindServiceUnavailable) {
		t.Errorf("kind = %q, want service_unavailable", fault.KindOf(err))
	}
}

func TestUpsert_SendsPayload(t *testing.T) {
	var got struct {
		Points []struct {
			ID      string         `json:"id"`
			Vector  []float32      `json:"vector"`
			Payload map[string]any `json:"payload"`
		} `json:"points"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %q", r.Method)
		}
		if r.URL.Query().Get("wait") != "true" {
			t.Error("expected wait=true")
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "", "dossier")

	err := c.Upsert(context.Background(), []Point{
		{
			ID:     "p1",
			Vector: []float32{0.1, 0.2},
			Text:   "body text",
			Meta:   Metadata{GroupID: "GRP001", Sender: "SI Kumar"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(got.Points))
	}
	if got.Points[0].Payload["text"] != "body text" {
		t.Errorf("payload text = %v", got.Points[0].Payload["text"])
	}
	if got.Points[0].Payload["group_id"] != "GRP001" {
		t.Errorf("payload group_id = %v", got.Points[0].Payload["group_id"])
	}
}

func TestUpsert_NoPoints(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	c := NewClient(server.URL, "", "dossier")
	if err := c.Upsert(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Error("empty upsert must not call the index")
	}
}

func TestEnsureCollection_InvalidDimension(t *testing.T) {
	c := NewClient("http://unused", "", "dossier")
	err := c.EnsureCollection(context.Background(), 0)
	if err == nil {
		t.Fatal("expected error")
	}
	if !fault.Is(err, fault.KindInvalidInput) {
		t.Errorf("kind = %q, want invalid_input", fault.KindOf(err))
	}
}
