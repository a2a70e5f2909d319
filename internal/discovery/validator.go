package discovery

import (
	"sort"
	"strings"

	"keyscout/internal/dataset"
)

// keySep separates column values inside a composed row key. The ASCII unit
// separator is vanishingly rare in real data, so composed keys stay
// collision-free without escaping.
const keySep = "\x1f"

// perfectScore is the acceptance bar for "this combination is a key".
// Scores come out of a float division, so a hair under 100 still counts.
const perfectScore = 100 - 1e-9

// scoredCombination pairs a candidate with its uniqueness score. It never
// crosses the package boundary: results expose column names only, so callers
// cannot grow dependencies on scoring internals.
type scoredCombination struct {
	// columns in discovery order; guided-mode results keep the base prefix.
	columns []string
	score   float64
}

// setKey is the order-independent identity of a combination. Two candidates
// with the same column set are the same key regardless of discovery order.
func setKey(columns []string) string {
	cp := append([]string(nil), columns...)
	sort.Strings(cp)
	return strings.Join(cp, keySep)
}

// acceptThreshold returns the minimum score a combination of the given size
// must reach to be reported. Small combinations are held to 70; each extra
// column past two lowers the bar by 5 points, floored at 40. Larger
// combinations are inherently more distinct, so holding them to the same
// bar would only report the trivial ones.
func acceptThreshold(size int) float64 {
	t := 70 - 5*float64(size-2)
	if t > 70 {
		t = 70
	}
	if t < 40 {
		t = 40
	}
	return t
}

// validator scores combinations against one working dataset. The dataset is
// read-only, so a single validator is safe for concurrent use.
type validator struct {
	ds *dataset.Dataset
}

// score computes the uniqueness score of the named columns over every row of
// the working dataset: 100 times the fraction of rows whose composed key
// occurs exactly once. Missing values participate as empty strings, which
// makes rows missing the same fields collide and drags the score down, as
// it should.
//
// Callers resolve column names before searching; an unknown name here is a
// bug, not bad input, and scores 0.
func (v *validator) score(columns []string) float64 {
	rows := v.ds.RowCount()
	if rows == 0 || len(columns) == 0 {
		return 0
	}

	cols := make([][]string, len(columns))
	for i, name := range columns {
		c, ok := v.ds.Column(name)
		if !ok {
			return 0
		}
		cols[i] = c
	}

	groups := make(map[string]int, rows)
	var b strings.Builder
	for r := 0; r < rows; r++ {
		b.Reset()
		for i := range cols {
			if i > 0 {
				b.WriteString(keySep)
			}
			b.WriteString(cols[i][r])
		}
		groups[b.String()]++
	}

	singletons := 0
	for _, n := range groups {
		if n == 1 {
			singletons++
		}
	}
	return 100 * float64(singletons) / float64(rows)
}

// sortByScore orders combinations by descending score, breaking ties
// lexicographically so ranking is stable across runs.
func sortByScore(combos []scoredCombination) {
	sort.SliceStable(combos, func(i, j int) bool {
		if combos[i].score != combos[j].score {
			return combos[i].score > combos[j].score
		}
		return lessColumns(combos[i].columns, combos[j].columns)
	})
}

func lessColumns(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
