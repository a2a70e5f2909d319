package discovery

import (
	"testing"

	"keyscout/internal/dataset"
)

func mustDataset(t *testing.T, columns []string, records [][]string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New("test", columns, records)
	if err != nil {
		t.Fatalf("dataset.New: %v", err)
	}
	return ds
}

// TestValidatorScore checks the scoring definition directly: 100 times the
// fraction of rows whose composed key occurs exactly once.
func TestValidatorScore(t *testing.T) {
	t.Parallel()

	ds := mustDataset(t,
		[]string{"id", "city", "tier"},
		[][]string{
			{"1", "oslo", "a"},
			{"2", "oslo", "a"},
			{"3", "bergen", "b"},
			{"4", "bergen", "a"},
		},
	)
	v := &validator{ds: ds}

	tests := []struct {
		name    string
		columns []string
		want    float64
	}{
		{name: "unique column", columns: []string{"id"}, want: 100},
		{name: "duplicated column", columns: []string{"city"}, want: 0},
		{name: "partially unique column", columns: []string{"tier"}, want: 25},
		{name: "pair resolves duplicates", columns: []string{"city", "tier"}, want: 50},
		{name: "superset of a key stays perfect", columns: []string{"id", "city"}, want: 100},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := v.score(tt.columns); got != tt.want {
				t.Errorf("score(%v) = %v, want %v", tt.columns, got, tt.want)
			}
		})
	}
}

// TestValidatorScoreMissingValues checks that missing values ("") compose
// into the key like any other value, so rows missing the same fields collide.
func TestValidatorScoreMissingValues(t *testing.T) {
	t.Parallel()

	ds := mustDataset(t,
		[]string{"a", "b"},
		[][]string{
			{"", "x"},
			{"", "x"},
			{"1", "y"},
			{"2", ""},
		},
	)
	v := &validator{ds: ds}

	if got := v.score([]string{"a", "b"}); got != 50 {
		t.Errorf("score = %v, want 50", got)
	}
}

func TestAcceptThreshold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		size int
		want float64
	}{
		{size: 1, want: 70},
		{size: 2, want: 70},
		{size: 3, want: 65},
		{size: 4, want: 60},
		{size: 7, want: 45},
		{size: 8, want: 40},
		{size: 12, want: 40},
	}
	for _, tt := range tests {
		if got := acceptThreshold(tt.size); got != tt.want {
			t.Errorf("acceptThreshold(%d) = %v, want %v", tt.size, got, tt.want)
		}
	}
}

// TestSetKeyOrderIndependent checks that combination identity ignores
// discovery order, which is what deduplication relies on.
func TestSetKeyOrderIndependent(t *testing.T) {
	t.Parallel()

	if setKey([]string{"b", "a"}) != setKey([]string{"a", "b"}) {
		t.Error("setKey should be order independent")
	}
	if setKey([]string{"a"}) == setKey([]string{"a", "b"}) {
		t.Error("different sets should have different keys")
	}
}

func TestExtendDeduplicatesBySet(t *testing.T) {
	t.Parallel()

	survivors := []scoredCombination{
		{columns: []string{"a"}, score: 90},
		{columns: []string{"b"}, score: 80},
	}
	got := extend(survivors, []string{"a", "b", "c"}, 100)

	// {a,b} appears once even though both survivors generate it.
	want := [][]string{{"a", "b"}, {"a", "c"}, {"b", "c"}}
	if len(got) != len(want) {
		t.Fatalf("extend produced %d candidates %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if setKey(got[i]) != setKey(want[i]) {
			t.Errorf("candidate %d = %v, want set %v", i, got[i], want[i])
		}
	}
}

func TestExtendHonorsLimit(t *testing.T) {
	t.Parallel()

	survivors := []scoredCombination{{columns: []string{"a"}, score: 90}}
	got := extend(survivors, []string{"b", "c", "d", "e"}, 2)
	if len(got) != 2 {
		t.Fatalf("extend produced %d candidates, want 2", len(got))
	}
}
