package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Outcome classifies how a run ended.
type Outcome string

const (
	OutcomeCommitted       Outcome = "committed"
	OutcomeNoChanges       Outcome = "no_changes"
	OutcomeProducerFailed  Outcome = "producer_failed"
	OutcomeReconcileFailed Outcome = "reconcile_failed"
	OutcomeLeaseHeld       Outcome = "lease_held"
)

// Run is one recorded run.
type Run struct {
	ID         int64     `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Outcome    Outcome   `json:"outcome"`
	Matches    int       `json:"matches"`
	CommitHash string    `json:"commit_hash,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// Store is the run ledger.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	outcome     TEXT NOT NULL,
	matches     INTEGER NOT NULL DEFAULT 0,
	commit_hash TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// Open opens (and if needed creates) the ledger database at path, applying
// the usual production pragmas before use.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %s: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying ledger schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one run into the ledger and returns its row ID.
func (s *Store) Record(run *Run) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO runs (started_at, finished_at, outcome, matches, commit_hash, error)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.FinishedAt.UTC().Format(time.RFC3339),
		string(run.Outcome),
		run.Matches,
		run.CommitHash,
		run.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("recording run: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns the last n runs, newest first.
func (s *Store) Recent(n int) ([]*Run, error) {
	rows, err := s.db.Query(
		`SELECT id, started_at, finished_at, outcome, matches, commit_hash, error
		 FROM runs ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var (
			run      Run
			started  string
			finished string
			outcome  string
		)
		if err := rows.Scan(&run.ID, &started, &finished, &outcome,
			&run.Matches, &run.CommitHash, &run.Error); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		run.Outcome = Outcome(outcome)
		if t, err := time.Parse(time.RFC3339, started); err == nil {
			run.StartedAt = t
		}
		if t, err := time.Parse(time.RFC3339, finished); err == nil {
			run.FinishedAt = t
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading runs: %w", err)
	}
	return runs, nil
}
