package store

import (
	"context"
	"fmt"

	"github.com/argus-agency/dossier/internal/roster"
)

// LoadRoster reads the full personnel directory. It is loaded once at
// startup and treated as read-only afterwards.
func (s *Store) LoadRoster(ctx context.Context) (roster.Directory, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT identifier, name, role FROM personnel`)
	if err != nil {
		return nil, fmt.Errorf("query personnel: %w", err)
	}
	defer rows.Close()

	dir := make(roster.Directory)
	for rows.Next() {
		var identifier, name, role string
		if err := rows.Scan(&identifier, &name, &role); err != nil {
			return nil, fmt.Errorf("scan personnel row: %w", err)
		}
		dir[identifier] = roster.Identity{Name: name, Role: role}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate personnel rows: %w", err)
	}
	return dir, nil
}
