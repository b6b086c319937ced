package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/arcprompt/internal/domain"
)

type Snapshot struct {
	ID          string    `json:"id"`
	TakenAt     time.Time `json:"taken_at"`
	Total       int       `json:"total"`
	Unique      int       `json:"unique"`
	Occurrences int       `json:"occurrences"`
	Last24h     int       `json:"last_24h"`
	Records     int       `json:"records"`
}

// ExportDiagnostics stores one snapshot of the fallback log and returns the
// snapshot id.
func (s *Store) ExportDiagnostics(ctx context.Context, records []domain.FallbackRecord, stats domain.FallbackStats) (string, error) {
	takenAt := s.clock.Now()
	snapshotID := s.newID(takenAt)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin export: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO diagnostics_snapshots (id, taken_at, total, unique_pairs, occurrences, last_24h)
		VALUES (?, ?, ?, ?, ?, ?)`,
		snapshotID, formatTime(takenAt), stats.Total, stats.Unique, stats.Occurrences, stats.Last24h,
	)
	if err != nil {
		return "", fmt.Errorf("insert snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fallback_records (id, snapshot_id, genre, arc, used_fallback, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare records: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		recordedAt := record.Timestamp
		if recordedAt.IsZero() {
			recordedAt = takenAt
		}
		_, err := stmt.ExecContext(ctx,
			s.newID(recordedAt), snapshotID, record.Genre, string(record.Arc), record.UsedFallback, formatTime(recordedAt),
		)
		if err != nil {
			return "", fmt.Errorf("insert record %s/%s: %w", record.Genre, record.Arc, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit export: %w", err)
	}

	return snapshotID, nil
}

// ListSnapshots returns snapshots newest first.
func (s *Store) ListSnapshots(ctx context.Context) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.taken_at, s.total, s.unique_pairs, s.occurrences, s.last_24h, COUNT(r.id)
		FROM diagnostics_snapshots s
		LEFT JOIN fallback_records r ON r.snapshot_id = s.id
		GROUP BY s.id
		ORDER BY s.taken_at DESC, s.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var snapshot Snapshot
		var takenAt string
		if err := rows.Scan(
			&snapshot.ID, &takenAt, &snapshot.Total, &snapshot.Unique,
			&snapshot.Occurrences, &snapshot.Last24h, &snapshot.Records,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snapshot.TakenAt = parseTime(takenAt)
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}

	return snapshots, nil
}

// SnapshotRecords returns the records of one snapshot, oldest first.
func (s *Store) SnapshotRecords(ctx context.Context, snapshotID string) ([]domain.FallbackRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT genre, arc, used_fallback, recorded_at
		FROM fallback_records
		WHERE snapshot_id = ?
		ORDER BY recorded_at ASC, id ASC`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []domain.FallbackRecord
	for rows.Next() {
		var record domain.FallbackRecord
		var arc, recordedAt string
		if err := rows.Scan(&record.Genre, &arc, &record.UsedFallback, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		record.Arc = domain.Arc(arc)
		record.Timestamp = parseTime(recordedAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return records, nil
}
