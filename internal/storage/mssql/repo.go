// Package mssql implements storage.Repository on Microsoft SQL Server.
package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"keyscout/internal/storage"
)

// Repo implements storage.Repository for SQL Server.
//
// SQL Server has no ON CONFLICT clause, so SaveRun uses an
// INSERT ... SELECT ... WHERE NOT EXISTS pattern for idempotency.
type Repo struct {
	db *sql.DB
}

func init() {
	storage.Register("mssql", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
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

var schemaStatements = []string{
	`IF OBJECT_ID(N'runs', N'U') IS NULL
CREATE TABLE runs (
  id           NVARCHAR(64) PRIMARY KEY,
  dataset      NVARCHAR(256) NOT NULL,
  mode         NVARCHAR(32) NOT NULL,
  row_count    BIGINT NOT NULL,
  sampled_rows BIGINT NOT NULL,
  truncated    BIT NOT NULL,
  started_at   DATETIMEOFFSET NOT NULL,
  finished_at  DATETIMEOFFSET NOT NULL
)`,
	`IF OBJECT_ID(N'run_keys', N'U') IS NULL
CREATE TABLE run_keys (
  run_id      NVARCHAR(64) NOT NULL REFERENCES runs(id),
  position    INT NOT NULL,
  key_columns NVARCHAR(MAX) NOT NULL,
  PRIMARY KEY (run_id, position)
)`,
}

func (r *Repo) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("mssql: ensure schema: %w", err)
		}
	}
	return nil
}

// SaveRun persists a run and its keys in one transaction. Re-saving an
// existing run ID writes nothing.
func (r *Repo) SaveRun(ctx context.Context, run storage.Run) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, dataset, mode, row_count, sampled_rows, truncated, started_at, finished_at)
		 SELECT @p1, @p2, @p3, @p4, @p5, @p6, @p7, @p8
		 WHERE NOT EXISTS (SELECT 1 FROM runs WHERE id = @p1)`,
		run.ID, run.Dataset, run.Mode, run.RowCount, run.SampledRows,
		run.Truncated, run.StartedAt.UTC(), run.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("mssql: insert run %s: %w", run.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}

	if len(run.Keys) > 0 {
		q, args := buildInsertKeysSQL(run.ID, run.Keys)
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("mssql: insert keys for run %s: %w", run.ID, err)
		}
	}

	return tx.Commit()
}

// buildInsertKeysSQL constructs one multi-row INSERT for a run's keys. It is
// pure so placeholder numbering can be unit tested without a database.
func buildInsertKeysSQL(runID string, keys [][]string) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO run_keys (run_id, position, key_columns) VALUES ")

	args := make([]any, 0, len(keys)*3)
	p := 1
	for i, key := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "(@p%d, @p%d, @p%d)", p, p+1, p+2)
		args = append(args, runID, i, storage.JoinKey(key))
		p += 3
	}
	return b.String(), args
}

func (r *Repo) GetRun(ctx context.Context, id string) (storage.Run, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, dataset, mode, row_count, sampled_rows, truncated, started_at, finished_at
		 FROM runs WHERE id = @p1`, id)

	var run storage.Run
	err := row.Scan(&run.ID, &run.Dataset, &run.Mode, &run.RowCount, &run.SampledRows,
		&run.Truncated, &run.StartedAt, &run.FinishedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Run{}, fmt.Errorf("%w: %s", storage.ErrRunNotFound, id)
		}
		return storage.Run{}, fmt.Errorf("mssql: get run %s: %w", id, err)
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
		q += ` WHERE dataset = @p1`
		args = append(args, dataset)
	}
	q += ` ORDER BY started_at DESC, id DESC`
	if limit > 0 {
		q += fmt.Sprintf(` OFFSET 0 ROWS FETCH NEXT @p%d ROWS ONLY`, len(args)+1)
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("mssql: list runs: %w", err)
	}
	defer rows.Close()

	var out []storage.Run
	for rows.Next() {
		var run storage.Run
		if err := rows.Scan(&run.ID, &run.Dataset, &run.Mode, &run.RowCount, &run.SampledRows,
			&run.Truncated, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, fmt.Errorf("mssql: list runs: %w", err)
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
		`SELECT key_columns FROM run_keys WHERE run_id = @p1 ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("mssql: load keys for run %s: %w", runID, err)
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
