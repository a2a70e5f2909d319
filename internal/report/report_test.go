package report

import (
	"strings"
	"testing"
	"time"

	"keyscout/internal/profile"
	"keyscout/internal/storage"
)

func TestProfileTable(t *testing.T) {
	t.Parallel()

	out := ProfileTable([]profile.Column{
		{Name: "order_id", DistinctCount: 5000, DistinctRatio: 1, NameScore: 1},
		{Name: "created_at", DistinctCount: 120, DistinctRatio: 0.024, NullRatio: 0.5, IsTemporal: true},
	})

	for _, want := range []string{"order_id", "100.0%", "created_at", "50.0%", "yes"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestKeysTable(t *testing.T) {
	t.Parallel()

	out := KeysTable([][]string{
		{"order_id"},
		{"region", "store", "receipt"},
	})

	if !strings.Contains(out, "region + store + receipt") {
		t.Errorf("output missing composite key:\n%s", out)
	}
	if !strings.Contains(out, "3") {
		t.Errorf("output missing size column:\n%s", out)
	}
}

func TestRunsTable(t *testing.T) {
	t.Parallel()

	started := time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC)
	out := RunsTable([]storage.Run{
		{
			ID:          "run-1",
			Dataset:     "orders",
			Mode:        "auto",
			RowCount:    5000,
			SampledRows: 5000,
			Truncated:   true,
			StartedAt:   started,
			FinishedAt:  started.Add(1500 * time.Millisecond),
			Keys:        [][]string{{"order_id"}},
		},
	})

	for _, want := range []string{"run-1", "orders", "auto", "yes", "1.5s"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
