// Package storage persists discovery runs so key findings can be compared
// across invocations. Backends register themselves by kind from init(); core
// code depends only on the Repository interface.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Config is the minimal configuration needed to open a repository.
//
// Edge cases:
//   - Kind must be non-empty and must match a registered backend kind.
//   - DSN is passed through to the backend factory; validation is
//     backend-specific.
type Config struct {
	Kind string
	DSN  string
}

// Run is one persisted discovery run.
type Run struct {
	// ID is assigned by the caller, one UUID per run.
	ID      string
	Dataset string
	Mode    string

	// RowCount is the dataset's full row count; SampledRows is how many rows
	// the run actually validated against.
	RowCount    int
	SampledRows int

	Truncated  bool
	StartedAt  time.Time
	FinishedAt time.Time

	// Keys are the reported combinations, in reporting order.
	Keys [][]string
}

// ErrRunNotFound is returned by GetRun for an unknown run ID.
var ErrRunNotFound = errors.New("storage: run not found")

// Repository is the backend-agnostic persistence interface for runs.
//
// IMPORTANT: this interface is intentionally minimal. Each backend implements
// the semantics its engine supports natively (Postgres ON CONFLICT, SQLite
// OR IGNORE, SQL Server NOT EXISTS) so SaveRun stays idempotent everywhere.
type Repository interface {
	// Close releases backend resources. Treat it as "call once".
	Close()

	// EnsureSchema creates the runs tables if they do not exist. Safe to run
	// on every invocation.
	EnsureSchema(ctx context.Context) error

	// SaveRun persists one run and its keys. Saving the same run ID twice is
	// a no-op, so reprocessing never duplicates results.
	SaveRun(ctx context.Context, run Run) error

	// GetRun loads one run by ID, keys included.
	// Returns ErrRunNotFound (wrapped) for unknown IDs.
	GetRun(ctx context.Context, id string) (Run, error)

	// ListRuns returns the most recent runs, newest first, keys included.
	// An empty dataset matches all datasets; limit <= 0 means no limit.
	ListRuns(ctx context.Context, dataset string, limit int) ([]Run, error)
}

type factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]factory{}
)

// Register registers a backend under a kind (e.g. "postgres", "sqlite").
//
// When to use:
//   - Call Register from an init() function in a backend package.
//   - The kind string becomes the lookup key used by New.
//
// Panics:
//   - If kind is empty.
//   - If f is nil.
//   - If kind is already registered. Failing fast here avoids ambiguous
//     backend selection.
func Register(kind string, f factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}

	factories[kind] = f
}

// New constructs a Repository using the registered backend factory.
//
// Concurrency:
//   - Safe for concurrent use with Register. New takes a read lock while
//     selecting the factory.
//
// Errors:
//   - Returns an error if cfg.Kind is empty or unsupported.
//   - Returns whatever error the registered factory returns.
func New(ctx context.Context, cfg Config) (Repository, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("storage: missing kind")
	}

	mu.RLock()
	f := factories[cfg.Kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("storage: unsupported kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// Kinds returns the registered backend kinds, for CLI usage messages.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	return out
}

// JoinKey flattens a key's column list for storage. Column names are
// normalized on ingestion and cannot contain commas, so the encoding
// round-trips without escaping.
func JoinKey(columns []string) string {
	return strings.Join(columns, ",")
}

// SplitKey is the inverse of JoinKey.
func SplitKey(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
