package discovery

import "sort"

// Result is the outcome of one discovery run.
type Result struct {
	// Keys are the accepted combinations, ordered by ascending size, then
	// descending score, then lexicographically. Guided-mode keys keep the
	// base columns as their leading prefix.
	Keys [][]string

	// Truncated reports that a validation budget expired before the search
	// finished. Keys holds everything validated up to that point.
	Truncated bool
}

// aggregate orders recorded combinations, drops duplicate column sets, and
// truncates to the result cap.
//
// Identity is the column set: the same columns found through different paths
// are one candidate key, and the better-placed occurrence wins. Scores stay
// internal to the package.
func aggregate(recorded []scoredCombination, maxResults int) [][]string {
	sort.SliceStable(recorded, func(i, j int) bool {
		a, b := recorded[i], recorded[j]
		if len(a.columns) != len(b.columns) {
			return len(a.columns) < len(b.columns)
		}
		if a.score != b.score {
			return a.score > b.score
		}
		return lessColumns(a.columns, b.columns)
	})

	seen := make(map[string]struct{}, len(recorded))
	keys := make([][]string, 0, len(recorded))
	for _, sc := range recorded {
		k := setKey(sc.columns)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, append([]string(nil), sc.columns...))
		if len(keys) >= maxResults {
			break
		}
	}
	return keys
}
