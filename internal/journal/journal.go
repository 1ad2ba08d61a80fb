// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package journal keeps a SQLite record of every batch run and the outcome
// of each query in it, so unresolved titles can be reviewed later. The
// journal is write-only from the pipeline's point of view: lookups never
// consult it.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/semantic-bib/internal/batch"
)

// Store manages the journal database.
type Store struct {
	db *sql.DB
}

// Run summarizes one recorded batch run.
type Run struct {
	ID        string
	StartedAt time.Time
	Input     string
	Mode      string
	Total     int
	Resolved  int
	Missing   int
}

// Lookup is the recorded outcome of one query.
type Lookup struct {
	RunID       string
	StartedAt   time.Time
	Position    int
	Title       string
	AuthorHint  string
	CitationKey string
	Status      string
	Error       string
}

// Open opens or creates the journal database at path, creating its parent
// directory and the schema if needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			input TEXT NOT NULL,
			mode TEXT NOT NULL,
			total INTEGER NOT NULL,
			resolved INTEGER NOT NULL,
			missing INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS lookups (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			author_hint TEXT,
			citation_key TEXT,
			status TEXT NOT NULL,
			error TEXT,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_lookups_status ON lookups(status)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record writes one run and all of its results in a single transaction and
// returns the stored run summary.
func (s *Store) Record(ctx context.Context, input, mode string, startedAt time.Time, results []batch.Result) (Run, error) {
	run := Run{
		ID:        uuid.NewString(),
		StartedAt: startedAt.UTC(),
		Input:     input,
		Mode:      mode,
		Total:     len(results),
	}
	for _, r := range results {
		if r.OK() {
			run.Resolved++
		} else {
			run.Missing++
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, input, mode, total, resolved, missing)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.Format(time.RFC3339Nano), run.Input, run.Mode,
		run.Total, run.Resolved, run.Missing,
	)
	if err != nil {
		return Run{}, fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO lookups (run_id, position, title, author_hint, citation_key, status, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Run{}, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range results {
		var key, errText string
		if r.OK() {
			key = r.Entry.Key
		} else if r.Err != nil {
			errText = r.Err.Error()
		}
		_, err := stmt.ExecContext(ctx,
			run.ID, i, r.Query.Title, r.Query.AuthorHint, key, string(r.Status()), errText,
		)
		if err != nil {
			return Run{}, fmt.Errorf("inserting lookup %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("committing run: %w", err)
	}
	return run, nil
}

// Runs returns the most recent runs, newest first. A limit <= 0 returns all.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, input, mode, total, resolved, missing
		 FROM runs ORDER BY started_at DESC LIMIT ?`, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started string
		if err := rows.Scan(&r.ID, &started, &r.Input, &r.Mode, &r.Total, &r.Resolved, &r.Missing); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt = parseTime(started)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Missing returns unresolved lookups, newest run first and in input order
// within a run. A limit <= 0 returns all.
func (s *Store) Missing(ctx context.Context, limit int) ([]Lookup, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT l.run_id, r.started_at, l.position, l.title,
		        COALESCE(l.author_hint, ''), COALESCE(l.citation_key, ''),
		        l.status, COALESCE(l.error, '')
		 FROM lookups l JOIN runs r ON r.id = l.run_id
		 WHERE l.status != ?
		 ORDER BY r.started_at DESC, l.position
		 LIMIT ?`, string(batch.StatusResolved), sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying missing lookups: %w", err)
	}
	defer rows.Close()

	var out []Lookup
	for rows.Next() {
		var l Lookup
		var started string
		if err := rows.Scan(&l.RunID, &started, &l.Position, &l.Title,
			&l.AuthorHint, &l.CitationKey, &l.Status, &l.Error); err != nil {
			return nil, fmt.Errorf("scanning lookup: %w", err)
		}
		l.StartedAt = parseTime(started)
		out = append(out, l)
	}
	return out, rows.Err()
}

// sqlLimit maps a non-positive limit to SQLite's "no limit".
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
