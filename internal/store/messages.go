package store

import (
	"context"
	"fmt"

	"github.com/argus-agency/dossier/internal/chatlog"
)

// WriteMessages persists parsed message records. Inserts are append-only:
// re-parsing the same source file creates new rows with new IDs, it never
// updates existing ones.
func (s *Store) WriteMessages(ctx context.Context, records []chatlog.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, rec := range records {
		_, err := tx.Exec(ctx, `
			INSERT INTO messages (id, ts_text, sender_id, sender_name, sender_role, body, tags, source_file_id, group_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())`,
			rec.ID, rec.Timestamp, rec.SenderID, rec.SenderName, rec.SenderRole,
			rec.Body, rec.Tags, rec.SourceFileID, rec.GroupID,
		)
		if err != nil {
			return fmt.Errorf("insert message %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
