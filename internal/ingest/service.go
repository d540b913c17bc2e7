// Package ingest runs the write path: raw text in, vectors and records out.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/argus-agency/dossier/internal/chatlog"
	"github.com/argus-agency/dossier/internal/roster"
	"github.com/argus-agency/dossier/internal/vecindex"
)

// Embedder converts text into a vector and reports the dimensionality
// observed on the first successful call. Satisfied by *embed.Client.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// Indexer writes points to the vector index. Satisfied by *vecindex.Client.
type Indexer interface {
	EnsureCollection(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, points []vecindex.Point) error
}

// MessageWriter persists parsed records. Satisfied by *store.Store.
type MessageWriter interface {
	WriteMessages(ctx context.Context, records []chatlog.Record) error
}

type Service struct {
	embedder Embedder
	index    Indexer
	messages MessageWriter // optional; nil disables record persistence
	dir      roster.Directory
	logger   *slog.Logger

	mu         sync.Mutex
	indexReady bool
}

func New(embedder Embedder, index Indexer, messages MessageWriter, dir roster.Directory, logger *slog.Logger) *Service {
	return &Service{
		embedder: embedder,
		index:    index,
		messages: messages,
		dir:      dir,
		logger:   logger,
	}
}

// IngestChatExport normalizes a raw chat export, embeds each message body
// and writes the points to the index. Zero parsed records is a valid (if
// degenerate) outcome: it logs a warning and returns 0, nil.
func (s *Service) IngestChatExport(ctx context.Context, raw, fileID, groupID string) (int, error) {
	records := chatlog.Parse(raw, s.dir, fileID, groupID)
	if len(records) == 0 {
		s.logger.Warn("chat export produced no records", "file_id", fileID, "group_id", groupID)
		return 0, nil
	}

	points := make([]vecindex.Point, 0, len(records))
	for _, rec := range records {
		vec, err := s.embedder.Embed(ctx, rec.Body)
		if err != nil {
			return 0, fmt.Errorf("embed message %s: %w", rec.ID, err)
		}
		points = append(points, vecindex.Point{
			ID:     rec.ID,
			Vector: vec,
			Text:   rec.Body,
			Meta: vecindex.Metadata{
				DocType:   "chat_log",
				Source:    fileID,
				GroupID:   rec.GroupID,
				Sender:    rec.SenderName,
				Role:      rec.SenderRole,
				Timestamp: rec.Timestamp,
			},
		})
	}

	if err := s.ensureIndex(ctx); err != nil {
		return 0, err
	}
	if err := s.index.Upsert(ctx, points); err != nil {
		return 0, fmt.Errorf("upsert chat points: %w", err)
	}

	if s.messages != nil {
		if err := s.messages.WriteMessages(ctx, records); err != nil {
			return 0, fmt.Errorf("persist records: %w", err)
		}
	}

	s.logger.Info("chat export ingested", "file_id", fileID, "group_id", groupID, "records", len(records))
	return len(records), nil
}

// IngestDocument chunks free document text, embeds each chunk and writes the
// points to the index with document provenance.
func (s *Service) IngestDocument(ctx context.Context, text, fileID, docType, source string) (int, error) {
	chunks := ChunkText(text)
	if len(chunks) == 0 {
		s.logger.Warn("document produced no chunks", "file_id", fileID)
		return 0, nil
	}

	points := make([]vecindex.Point, 0, len(chunks))
	for _, chunk := range chunks {
		vec, err := s.embedder.Embed(ctx, chunk)
		if err != nil {
			return 0, fmt.Errorf("embed chunk of %s: %w", fileID, err)
		}
		points = append(points, vecindex.Point{
			ID:     uuid.NewString(),
			Vector: vec,
			Text:   chunk,
			Meta: vecindex.Metadata{
				DocType: docType,
				Source:  source,
			},
		})
	}

	if err := s.ensureIndex(ctx); err != nil {
		return 0, err
	}
	if err := s.index.Upsert(ctx, points); err != nil {
		return 0, fmt.Errorf("upsert document points: %w", err)
	}

	s.logger.Info("document ingested", "file_id", fileID, "doc_type", docType, "chunks", len(chunks))
	return len(chunks), nil
}

// ensureIndex creates the collection before the first upsert of the process.
// It runs after at least one embedding has completed, so the embedder's
// observed dimension is available. A failed attempt is retried on the next
// ingest; a successful one is never repeated.
func (s *Service) ensureIndex(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexReady {
		return nil
	}
	if err := s.index.EnsureCollection(ctx, s.embedder.Dimension()); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}
	s.indexReady = true
	return nil
}
