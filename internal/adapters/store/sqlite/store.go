// Package sqlite persists pattern libraries and fallback diagnostics
// snapshots in a SQLite database.
package sqlite

import (
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/bnema/arcprompt/internal/ports"
)

const dbDirMode = 0o700

type Store struct {
	db    *sql.DB
	path  string
	clock ports.Clock

	entropyMu sync.Mutex
	entropy   *rand.Rand
}

var _ ports.DiagnosticsExporter = (*Store)(nil)

// NewStore opens or creates the database at dbPath and applies the schema.
func NewStore(dbPath string, clock ports.Clock) (*Store, error) {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), dbDirMode); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{
		db:      db,
		path:    dbPath,
		clock:   clock,
		entropy: rand.New(rand.NewSource(clock.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Store) newID(at time.Time) string {
	s.entropyMu.Lock()
	defer s.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(at), s.entropy).String()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS patterns (
		genre      TEXT NOT NULL,
		arc        TEXT NOT NULL,
		pattern    TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (genre, arc)
	);

	CREATE TABLE IF NOT EXISTS diagnostics_snapshots (
		id           TEXT PRIMARY KEY,
		taken_at     TEXT NOT NULL,
		total        INTEGER NOT NULL,
		unique_pairs INTEGER NOT NULL,
		occurrences  INTEGER NOT NULL,
		last_24h     INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS fallback_records (
		id            TEXT PRIMARY KEY,
		snapshot_id   TEXT NOT NULL REFERENCES diagnostics_snapshots(id) ON DELETE CASCADE,
		genre         TEXT NOT NULL,
		arc           TEXT NOT NULL,
		used_fallback TEXT NOT NULL,
		recorded_at   TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_fallback_records_snapshot ON fallback_records(snapshot_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	return s.db.Close()
}

func formatTime(value time.Time) string {
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}
