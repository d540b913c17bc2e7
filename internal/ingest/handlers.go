package ingest

import (
	"context"
	"encoding/json"

	"github.com/argus-agency/dossier/internal/events"
)

// ChatlogStoredEvent is the payload of a dossier.chatlog.stored event.
type ChatlogStoredEvent struct {
	FileID  string `json:"file_id"`
	GroupID string `json:"group_id"`
	Text    string `json:"text"`
}

// DocumentStoredEvent is the payload of a dossier.document.stored event.
type DocumentStoredEvent struct {
	FileID  string `json:"file_id"`
	DocType string `json:"doc_type"`
	Source  string `json:"source"`
	Text    string `json:"text"`
}

// Publisher announces ingest outcomes. Satisfied by *events.Client.
type Publisher interface {
	Publish(subject string, data any) error
}

// Handlers adapts the ingest service to NATS subscriptions.
type Handlers struct {
	service   *Service
	publisher Publisher
}

func NewHandlers(service *Service, publisher Publisher) *Handlers {
	return &Handlers{service: service, publisher: publisher}
}

// HandleChatlogStored is the NATS handler for dossier.chatlog.stored.
func (h *Handlers) HandleChatlogStored(subject string, data []byte) {
	ctx := context.Background()

	var evt ChatlogStoredEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		h.service.logger.Error("failed to parse chatlog event", "error", err)
		return
	}

	count, err := h.service.IngestChatExport(ctx, evt.Text, evt.FileID, evt.GroupID)
	if err != nil {
		h.service.logger.Error("chat ingest failed", "file_id", evt.FileID, "error", err)
		return
	}

	h.announce(evt.FileID, "chat_log", count)
}

// HandleDocumentStored is the NATS handler for dossier.document.stored.
func (h *Handlers) HandleDocumentStored(subject string, data []byte) {
	ctx := context.Background()

	var evt DocumentStoredEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		h.service.logger.Error("failed to parse document event", "error", err)
		return
	}

	count, err := h.service.IngestDocument(ctx, evt.Text, evt.FileID, evt.DocType, evt.Source)
	if err != nil {
		h.service.logger.Error("document ingest failed", "file_id", evt.FileID, "error", err)
		return
	}

	h.announce(evt.FileID, evt.DocType, count)
}

func (h *Handlers) announce(fileID, docType string, count int) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.Publish(events.SubjectIngestCompleted, map[string]any{
		"file_id":  fileID,
		"doc_type": docType,
		"count":    count,
	}); err != nil {
		h.service.logger.Warn("failed to publish ingest completion", "file_id", fileID, "error", err)
	}
}
