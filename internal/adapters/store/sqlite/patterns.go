package sqlite

import (
	"context"
	"fmt"

	"github.com/bnema/arcprompt/internal/adapters/library/memory"
)

// Import upserts every (genre, arc) pattern and returns how many were
// written. Keys are validated before anything is written.
func (s *Store) Import(ctx context.Context, patterns map[string]map[string]string) (int, error) {
	validated, err := memory.NewLibrary(s.path, patterns)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO patterns (genre, arc, pattern, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (genre, arc) DO UPDATE SET pattern = excluded.pattern, updated_at = excluded.updated_at`)
	if err != nil {
		return 0, fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()

	now := formatTime(s.clock.Now())
	imported := 0
	for genre, arcs := range validated.Patterns() {
		for arc, pattern := range arcs {
			if _, err := stmt.ExecContext(ctx, genre, arc, pattern, now); err != nil {
				return imported, fmt.Errorf("import %s/%s: %w", genre, arc, err)
			}
			imported++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}

	return imported, nil
}

// Load reads the patterns table into memory.
func (s *Store) Load(ctx context.Context) (*memory.Library, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT genre, arc, pattern FROM patterns`)
	if err != nil {
		return nil, fmt.Errorf("query patterns: %w", err)
	}
	defer rows.Close()

	patterns := map[string]map[string]string{}
	for rows.Next() {
		var genre, arc, pattern string
		if err := rows.Scan(&genre, &arc, &pattern); err != nil {
			return nil, fmt.Errorf("scan pattern: %w", err)
		}
		if patterns[genre] == nil {
			patterns[genre] = map[string]string{}
		}
		patterns[genre][arc] = pattern
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patterns: %w", err)
	}

	return memory.NewLibrary(s.path, patterns)
}
