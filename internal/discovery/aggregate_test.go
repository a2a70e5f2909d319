package discovery

import (
	"reflect"
	"testing"
)

// TestAggregateOrdering checks the reporting order: ascending size first,
// then descending score, then lexicographic.
func TestAggregateOrdering(t *testing.T) {
	t.Parallel()

	recorded := []scoredCombination{
		{columns: []string{"a", "b", "c"}, score: 100},
		{columns: []string{"z"}, score: 80},
		{columns: []string{"a"}, score: 80},
		{columns: []string{"m", "n"}, score: 95},
		{columns: []string{"a", "b"}, score: 70},
	}

	got := aggregate(recorded, 10)
	want := [][]string{
		{"a"},
		{"z"},
		{"m", "n"},
		{"a", "b"},
		{"a", "b", "c"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("aggregate = %v, want %v", got, want)
	}
}

// TestAggregateDeduplicates checks that the same column set found through
// different discovery paths is reported once, keeping the better placement.
func TestAggregateDeduplicates(t *testing.T) {
	t.Parallel()

	recorded := []scoredCombination{
		{columns: []string{"a", "b"}, score: 100},
		{columns: []string{"b", "a"}, score: 90},
		{columns: []string{"c", "d"}, score: 95},
	}

	got := aggregate(recorded, 10)
	want := [][]string{
		{"a", "b"},
		{"c", "d"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("aggregate = %v, want %v", got, want)
	}
}

func TestAggregateTruncates(t *testing.T) {
	t.Parallel()

	recorded := []scoredCombination{
		{columns: []string{"a"}, score: 90},
		{columns: []string{"b"}, score: 80},
		{columns: []string{"c"}, score: 70},
	}

	got := aggregate(recorded, 2)
	want := [][]string{{"a"}, {"b"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("aggregate = %v, want %v", got, want)
	}
}

func TestAggregateEmpty(t *testing.T) {
	t.Parallel()

	if got := aggregate(nil, 5); len(got) != 0 {
		t.Errorf("aggregate(nil) = %v, want empty", got)
	}
}
