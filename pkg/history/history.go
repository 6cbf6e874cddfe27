// Package history keeps an append-only sqlite log of completed runs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/agentstation/utc"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/agentstation/fcupdater/pkg/errors"
	"github.com/agentstation/fcupdater/pkg/logging"
)

const timeLayout = time.RFC3339Nano

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	master      TEXT NOT NULL,
	output      TEXT NOT NULL,
	added       INTEGER NOT NULL,
	removed     INTEGER NOT NULL,
	changed     INTEGER NOT NULL,
	conflicts   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// Run is one completed reconciliation.
type Run struct {
	ID         string   `json:"id" yaml:"id"`
	StartedAt  utc.Time `json:"started_at" yaml:"started_at"`
	FinishedAt utc.Time `json:"finished_at" yaml:"finished_at"`
	Master     string   `json:"master" yaml:"master"`
	Output     string   `json:"output" yaml:"output"`
	Added      int      `json:"added" yaml:"added"`
	Removed    int      `json:"removed" yaml:"removed"`
	Changed    int      `json:"changed" yaml:"changed"`
	Conflicts  int      `json:"conflicts" yaml:"conflicts"`
}

// Store is a run history backed by a sqlite file.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the history database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errors.WrapIO("migrate", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends run. A missing ID is generated and returned.
func (s *Store) Record(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, master, output, added, removed, changed, conflicts)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.Time.UTC().Format(timeLayout),
		run.FinishedAt.Time.UTC().Format(timeLayout),
		run.Master, run.Output,
		run.Added, run.Removed, run.Changed, run.Conflicts,
	)
	if err != nil {
		return "", errors.WrapIO("insert", s.path, err)
	}
	logging.FromContext(ctx).Debug().
		Str("run_id", run.ID).
		Str("db", s.path).
		Msg("Run recorded")
	return run.ID, nil
}

// List returns up to limit runs, newest first. A non-positive limit lists
// every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, started_at, finished_at, master, output, added, removed, changed, conflicts
		FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.WrapIO("query", s.path, err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var (
			run             Run
			started, finish string
		)
		if err := rows.Scan(&run.ID, &started, &finish, &run.Master, &run.Output,
			&run.Added, &run.Removed, &run.Changed, &run.Conflicts); err != nil {
			return nil, errors.WrapIO("scan", s.path, err)
		}
		if run.StartedAt, err = utc.Parse(timeLayout, started); err != nil {
			return nil, errors.WrapIO("scan", s.path, fmt.Errorf("started_at %q: %w", started, err))
		}
		if run.FinishedAt, err = utc.Parse(timeLayout, finish); err != nil {
			return nil, errors.WrapIO("scan", s.path, fmt.Errorf("finished_at %q: %w", finish, err))
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapIO("query", s.path, err)
	}
	return runs, nil
}
