// Package postgres implements storage.Repository on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"keyscout/internal/storage"
)

// Repo implements storage.Repository for Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

func init() {
	storage.Register("postgres", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Repo{pool: pool}, nil
}

func (r *Repo) Close() { r.pool.Close() }

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
  id           TEXT PRIMARY KEY,
  dataset      TEXT NOT NULL,
  mode         TEXT NOT NULL,
  row_count    BIGINT NOT NULL,
  sampled_rows BIGINT NOT NULL,
  truncated    BOOLEAN NOT NULL,
  started_at   TIMESTAMPTZ NOT NULL,
  finished_at  TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS run_keys (
  run_id      TEXT NOT NULL REFERENCES runs(id),
  position    INT NOT NULL,
  key_columns TEXT NOT NULL,
  PRIMARY KEY (run_id, position)
);
CREATE INDEX IF NOT EXISTS idx_runs_dataset ON runs(dataset, started_at);
`

func (r *Repo) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("postgres: ensure schema: %w", err)
	}
	return nil
}

// SaveRun persists a run and its keys in one transaction.
//
// Idempotency relies on ON CONFLICT (id) DO NOTHING: re-saving an existing
// run writes nothing, so reprocessing never duplicates keys.
func (r *Repo) SaveRun(ctx context.Context, run storage.Run) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cmd, err := tx.Exec(ctx,
		`INSERT INTO runs (id, dataset, mode, row_count, sampled_rows, truncated, started_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO NOTHING`,
		run.ID, run.Dataset, run.Mode, run.RowCount, run.SampledRows,
		run.Truncated, run.StartedAt.UTC(), run.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("postgres: insert run %s: %w", run.ID, err)
	}
	if cmd.RowsAffected() == 0 {
		return nil
	}

	if len(run.Keys) > 0 {
		q, args := buildInsertKeysSQL(run.ID, run.Keys)
		if _, err := tx.Exec(ctx, q, args...); err != nil {
			return fmt.Errorf("postgres: insert keys for run %s: %w", run.ID, err)
		}
	}

	return tx.Commit(ctx)
}

// buildInsertKeysSQL constructs one multi-row INSERT for a run's keys.
// It is pure so placeholder numbering can be unit tested without a database.
func buildInsertKeysSQL(runID string, keys [][]string) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO run_keys (run_id, position, key_columns) VALUES ")

	args := make([]any, 0, len(keys)*3)
	p := 1
	for i, key := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "($%d, $%d, $%d)", p, p+1, p+2)
		args = append(args, runID, i, storage.JoinKey(key))
		p += 3
	}
	return b.String(), args
}

func (r *Repo) GetRun(ctx context.Context, id string) (storage.Run, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, dataset, mode, row_count, sampled_rows, truncated, started_at, finished_at
		 FROM runs WHERE id = $1`, id)

	var run storage.Run
	err := row.Scan(&run.ID, &run.Dataset, &run.Mode, &run.RowCount, &run.SampledRows,
		&run.Truncated, &run.StartedAt, &run.FinishedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.Run{}, fmt.Errorf("%w: %s", storage.ErrRunNotFound, id)
		}
		return storage.Run{}, fmt.Errorf("postgres: get run %s: %w", id, err)
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
		q += ` WHERE dataset = $1`
		args = append(args, dataset)
	}
	q += ` ORDER BY started_at DESC, id DESC`
	if limit > 0 {
		q += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list runs: %w", err)
	}
	defer rows.Close()

	var out []storage.Run
	for rows.Next() {
		var run storage.Run
		if err := rows.Scan(&run.ID, &run.Dataset, &run.Mode, &run.RowCount, &run.SampledRows,
			&run.Truncated, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, fmt.Errorf("postgres: list runs: %w", err)
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
	rows, err := r.pool.Query(ctx,
		`SELECT key_columns FROM run_keys WHERE run_id = $1 ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("postgres: load keys for run %s: %w", runID, err)
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
