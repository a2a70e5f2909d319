package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"keyscout/internal/storage"
)

func openTestRepo(t *testing.T) storage.Repository {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "runs.db")
	repo, err := storage.New(context.Background(), storage.Config{Kind: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	t.Cleanup(repo.Close)

	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return repo
}

func testRun(id string, started time.Time) storage.Run {
	return storage.Run{
		ID:          id,
		Dataset:     "orders",
		Mode:        "auto",
		RowCount:    5000,
		SampledRows: 5000,
		Truncated:   false,
		StartedAt:   started,
		FinishedAt:  started.Add(3 * time.Second),
		Keys: [][]string{
			{"order_id"},
			{"region", "store", "receipt"},
		},
	}
}

// TestSaveAndGetRun checks the full round trip, including key order and
// timestamp precision surviving the TEXT encoding.
func TestSaveAndGetRun(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	ctx := context.Background()
	want := testRun("run-1", time.Date(2026, 8, 20, 10, 30, 0, 123456789, time.UTC))

	if err := repo.SaveRun(ctx, want); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	got, err := repo.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetRun = %+v, want %+v", got, want)
	}
}

// TestSaveRunIdempotent checks that re-saving the same run ID changes
// nothing: no error, no duplicated keys.
func TestSaveRunIdempotent(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	ctx := context.Background()
	run := testRun("run-1", time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC))

	if err := repo.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if err := repo.SaveRun(ctx, run); err != nil {
		t.Fatalf("second SaveRun: %v", err)
	}

	got, err := repo.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if len(got.Keys) != len(run.Keys) {
		t.Errorf("got %d keys after double save, want %d", len(got.Keys), len(run.Keys))
	}
}

func TestGetRunNotFound(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	_, err := repo.GetRun(context.Background(), "missing")
	if !errors.Is(err, storage.ErrRunNotFound) {
		t.Errorf("err = %v, want ErrRunNotFound", err)
	}
}

// TestListRuns checks ordering (newest first), the dataset filter, and the
// limit.
func TestListRuns(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"run-a", "run-b", "run-c"} {
		run := testRun(id, base.Add(time.Duration(i)*time.Minute))
		if id == "run-c" {
			run.Dataset = "customers"
		}
		if err := repo.SaveRun(ctx, run); err != nil {
			t.Fatalf("SaveRun(%s): %v", id, err)
		}
	}

	all, err := repo.ListRuns(ctx, "", 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	gotIDs := make([]string, len(all))
	for i, r := range all {
		gotIDs[i] = r.ID
	}
	if want := []string{"run-c", "run-b", "run-a"}; !reflect.DeepEqual(gotIDs, want) {
		t.Errorf("ListRuns order = %v, want %v", gotIDs, want)
	}

	orders, err := repo.ListRuns(ctx, "orders", 1)
	if err != nil {
		t.Fatalf("ListRuns(orders): %v", err)
	}
	if len(orders) != 1 || orders[0].ID != "run-b" {
		t.Errorf("ListRuns(orders, 1) = %v, want [run-b]", orders)
	}
	if len(orders) == 1 && len(orders[0].Keys) == 0 {
		t.Error("listed run has no keys loaded")
	}
}
