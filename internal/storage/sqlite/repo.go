// Package sqlite implements storage.Repository on SQLite via modernc.org's
// pure-Go driver, so the default backend needs no cgo and no server.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"keyscout/internal/storage"
)

// Repo implements storage.Repository for SQLite.
//
// SQLite has no timezone-aware timestamp type, so StartedAt and FinishedAt
// are stored as RFC3339Nano strings. That round-trips reliably through
// modernc.org/sqlite and stays readable when debugging the file directly.
type Repo struct {
	db *sql.DB
}

func init() {
	storage.Register("sqlite", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() { _ = r.db.Close() }

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
  id           TEXT PRIMARY KEY,
  dataset      TEXT NOT NULL,
  mode         TEXT NOT NULL,
  row_count    INTEGER NOT NULL,
  sampled_rows INTEGER NOT NULL,
  truncated    INTEGER NOT NULL,
  started_at   TEXT NOT NULL,
  finished_at  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS run_keys (
  run_id      TEXT NOT NULL REFERENCES runs(id),
  position    INTEGER NOT NULL,
  key_columns TEXT NOT NULL,
  PRIMARY KEY (run_id, position)
);
CREATE INDEX IF NOT EXISTS idx_runs_dataset ON runs(dataset, started_at);
`

// EnsureSchema creates the runs tables. Idempotent, safe on every startup.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("sqlite: ensure schema: %w", err)
	}
	return nil
}

// SaveRun persists a run and its keys in one transaction.
//
// Idempotency relies on INSERT OR IGNORE against the runs primary key: when
// the run row already exists nothing else is written, so re-saving the same
// run never duplicates keys.
func (r *Repo) SaveRun(ctx context.Context, run storage.Run) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO runs (id, dataset, mode, row_count, sampled_rows, truncated, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Dataset, run.Mode, run.RowCount, run.SampledRows,
		boolToInt(run.Truncated), formatTime(run.StartedAt), formatTime(run.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert run %s: %w", run.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}

	if len(run.Keys) > 0 {
		var b strings.Builder
		b.WriteString("INSERT INTO run_keys (run_id, position, key_columns) VALUES ")
		args := make([]any, 0, len(run.Keys)*3)
		for i, key := range run.Keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("(?, ?, ?)")
			args = append(args, run.ID, i, storage.JoinKey(key))
		}
		if _, err := tx.ExecContext(ctx, b.String(), args...); err != nil {
			return fmt.Errorf("sqlite: insert keys for run %s: %w", run.ID, err)
		}
	}

	return tx.Commit()
}

func (r *Repo) GetRun(ctx context.Context, id string) (storage.Run, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, dataset, mode, row_count, sampled_rows, truncated, started_at, finished_at
		 FROM runs WHERE id = ?`, id)

	run, err := scanRun(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Run{}, fmt.Errorf("%w: %s", storage.ErrRunNotFound, id)
		}
		return storage.Run{}, fmt.Errorf("sqlite: get run %s: %w", id, err)
	}

	run.Keys, err = r.loadKeys(ctx, id)
	if err != nil {
		return storage.Run{}, err
	}
	return run, nil
}

func (r *Repo) ListRuns(ctx context.Context, dataset string, limit int) ([]storage.Run, error) {
	q := `SELECT id, dataset, mode, row_count, sampled_rows, truncated, started_at, finished_at FROM runs`
	var args []any
	if dataset != "" {
		q += ` WHERE dataset = ?`
		args = append(args, dataset)
	}
	q += ` ORDER BY started_at DESC, id DESC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list runs: %w", err)
	}
	defer rows.Close()

	var out []storage.Run
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: list runs: %w", err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Keys, err = r.loadKeys(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Repo) loadKeys(ctx context.Context, runID string) ([][]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT key_columns FROM run_keys WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load keys for run %s: %w", runID, err)
	}
	defer rows.Close()

	var keys [][]string
	for rows.Next() {
		var joined string
		if err := rows.Scan(&joined); err != nil {
			return nil, err
		}
		keys = append(keys, storage.SplitKey(joined))
	}
	return keys, rows.Err()
}

func scanRun(scan func(dest ...any) error) (storage.Run, error) {
	var (
		run                   storage.Run
		truncated             int
		startedAt, finishedAt string
	)
	if err := scan(&run.ID, &run.Dataset, &run.Mode, &run.RowCount, &run.SampledRows,
		&truncated, &startedAt, &finishedAt); err != nil {
		return storage.Run{}, err
	}
	run.Truncated = truncated != 0

	var err error
	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return storage.Run{}, fmt.Errorf("parse started_at %q: %w", startedAt, err)
	}
	if run.FinishedAt, err = parseTime(finishedAt); err != nil {
		return storage.Run{}, fmt.Errorf("parse finished_at %q: %w", finishedAt, err)
	}
	return run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format: %q", s)
}
