// Package history implements a SQLite-backed log of preprocessing runs using
// database/sql. Each completed run is appended as one row, including the
// dropped and normalized column lists and the fitted scaler as JSON, so past
// runs can be inspected and reproduced without digging through log output.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	// SQLite driver; replace with your preferred driver if desired.
	_ "modernc.org/sqlite" // alternative: github.com/mattn/go-sqlite3

	"nutriprep/internal/transform"
)

// Entry is one recorded run.
type Entry struct {
	RunID             string
	Job               string
	InputPath         string
	OutputPath        string
	RowsIn            int
	RowsOut           int
	ColsIn            int
	ColsOut           int
	DroppedColumns    []string
	NormalizedColumns []string
	Scaler            *transform.Scaler
	StartedAt         time.Time
	Duration          time.Duration
}

// Store is a SQLite-backed run log.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id             TEXT    NOT NULL,
	job                TEXT    NOT NULL,
	input_path         TEXT    NOT NULL,
	output_path        TEXT    NOT NULL DEFAULT '',
	rows_in            INTEGER NOT NULL,
	rows_out           INTEGER NOT NULL,
	cols_in            INTEGER NOT NULL,
	cols_out           INTEGER NOT NULL,
	dropped_columns    TEXT    NOT NULL DEFAULT 'null',
	normalized_columns TEXT    NOT NULL DEFAULT 'null',
	scaler             TEXT    NOT NULL DEFAULT 'null',
	started_at         TEXT    NOT NULL,
	duration_ms        INTEGER NOT NULL
);`

// Open opens a SQLite connection using the provided DSN and returns a Store
// plus a Close function for cleanup.
//
// DSN is passed directly to database/sql; for example:
//
//	"file:nutriprep.db?cache=shared"
//	"nutriprep.db"
//	":memory:"
func Open(ctx context.Context, dsn string) (*Store, func(), error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, nil, fmt.Errorf("history: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("history: open: %w", err)
	}

	// One pooled connection: SQLite allows a single writer, and it keeps
	// :memory: databases on one handle.
	db.SetMaxOpenConns(1)

	// Fail fast on invalid DSNs.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("history: ping: %w", err)
	}

	closeFn := func() { db.Close() }
	return &Store{db: db}, closeFn, nil
}

// Init creates the runs table if it does not exist yet.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("history: init schema: %w", err)
	}
	return nil
}

// Record appends one run to the log. The column lists and the scaler are
// stored as JSON text; the insert runs inside a transaction.
func (s *Store) Record(ctx context.Context, e Entry) error {
	dropped, err := json.Marshal(e.DroppedColumns)
	if err != nil {
		return fmt.Errorf("history: encode dropped columns: %w", err)
	}
	normalized, err := json.Marshal(e.NormalizedColumns)
	if err != nil {
		return fmt.Errorf("history: encode normalized columns: %w", err)
	}
	scaler, err := json.Marshal(e.Scaler)
	if err != nil {
		return fmt.Errorf("history: encode scaler: %w", err)
	}

	const stmt = `
INSERT INTO runs (run_id, job, input_path, output_path, rows_in, rows_out, cols_in, cols_out,
	dropped_columns, normalized_columns, scaler, started_at, duration_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("history: begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, stmt,
		e.RunID,
		e.Job,
		e.InputPath,
		e.OutputPath,
		e.RowsIn,
		e.RowsOut,
		e.ColsIn,
		e.ColsOut,
		string(dropped),
		string(normalized),
		string(scaler),
		e.StartedAt.UTC().Format(time.RFC3339Nano),
		e.Duration.Milliseconds(),
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("history: record run: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("history: commit: %w", err)
	}
	return nil
}

// Recent returns the most recent runs, newest first. limit <= 0 means a
// default of 10.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}

	const query = `
SELECT run_id, job, input_path, output_path, rows_in, rows_out, cols_in, cols_out,
	dropped_columns, normalized_columns, scaler, started_at, duration_ms
FROM runs
ORDER BY id DESC
LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			dropped    string
			normalized string
			scaler     string
			startedAt  string
			durationMS int64
		)
		if err := rows.Scan(
			&e.RunID,
			&e.Job,
			&e.InputPath,
			&e.OutputPath,
			&e.RowsIn,
			&e.RowsOut,
			&e.ColsIn,
			&e.ColsOut,
			&dropped,
			&normalized,
			&scaler,
			&startedAt,
			&durationMS,
		); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(dropped), &e.DroppedColumns); err != nil {
			return nil, fmt.Errorf("history: decode dropped columns: %w", err)
		}
		if err := json.Unmarshal([]byte(normalized), &e.NormalizedColumns); err != nil {
			return nil, fmt.Errorf("history: decode normalized columns: %w", err)
		}
		if err := json.Unmarshal([]byte(scaler), &e.Scaler); err != nil {
			return nil, fmt.Errorf("history: decode scaler: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("history: parse started_at %q: %w", startedAt, err)
		}
		e.StartedAt = t
		e.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate runs: %w", err)
	}
	return entries, nil
}
