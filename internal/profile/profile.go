// Package profile computes per-column statistics for a dataset and selects
// the seed columns the discovery searches are allowed to combine.
//
// The profile is the sole ranking signal for seed selection: distinct ratio,
// null ratio, an identifier-pattern name score, and a temporal hint. It is a
// pure function of the dataset and never fails the run; a column that cannot
// be profiled is scored minimally and drops out of seed selection on its own.
package profile

import (
	"sort"
	"strings"

	"keyscout/internal/dataset"
)

// Column is the immutable per-column profile computed once per discovery run.
type Column struct {
	Name          string
	DistinctCount int
	DistinctRatio float64
	NullRatio     float64
	NameScore     float64
	IsTemporal    bool
}

// DefaultSeedLimit caps how many seed columns feed candidate generation.
// Candidate generation cost grows with the square of this number, so the cap
// is what keeps wide datasets (hundreds of columns) tractable.
const DefaultSeedLimit = 40

// temporalSampleLimit bounds how many non-null values are parsed when
// deciding whether a column is temporal.
const temporalSampleLimit = 200

// temporalMajority is the fraction of sampled values that must parse as a
// date or timestamp for the column to be flagged temporal.
const temporalMajority = 0.6

// Columns profiles every column of ds, in schema order.
//
// Distinct counting is exact: columns are profiled one at a time so only one
// column's distinct set is resident at once. Null ratio uses the full row
// count as denominator; distinct ratio uses the count of non-null rows, so a
// sparse but unique column still profiles as highly distinct.
func Columns(ds *dataset.Dataset) []Column {
	cols := ds.Columns()
	rows := ds.RowCount()

	out := make([]Column, 0, len(cols))
	for i, name := range cols {
		out = append(out, profileColumn(name, ds.ColumnAt(i), rows))
	}
	return out
}

func profileColumn(name string, values []string, rows int) Column {
	p := Column{Name: name, NameScore: nameScore(name)}
	if rows == 0 {
		return p
	}

	distinct := make(map[string]struct{}, 1024)
	nulls := 0
	for _, v := range values {
		if v == "" {
			nulls++
			continue
		}
		distinct[v] = struct{}{}
	}

	nonNull := rows - nulls
	p.NullRatio = float64(nulls) / float64(rows)
	p.DistinctCount = len(distinct)
	if nonNull > 0 {
		p.DistinctRatio = float64(len(distinct)) / float64(nonNull)
	}
	p.IsTemporal = isTemporal(values)
	return p
}

// identifierTokens map header fragments to a score boost. Exact-token
// matches score higher than substring hits so "id" beats "idle_time".
var identifierTokens = map[string]float64{
	"id":     1.0,
	"uuid":   1.0,
	"guid":   1.0,
	"key":    0.9,
	"code":   0.8,
	"hash":   0.8,
	"number": 0.7,
	"num":    0.7,
	"no":     0.5,
	"date":   0.5,
	"email":  0.6,
	"name":   0.3,
}

// nameScore is a heuristic in [0,1] boosting identifier-like column names.
func nameScore(name string) float64 {
	best := 0.0
	for _, tok := range strings.Split(name, "_") {
		if w, ok := identifierTokens[tok]; ok && w > best {
			best = w
		}
	}
	if best > 0 {
		return best
	}
	// Substring fallback at half weight ("orderid", "custcode").
	for frag, w := range identifierTokens {
		if len(frag) >= 3 && strings.Contains(name, frag) && w/2 > best {
			best = w / 2
		}
	}
	return best
}

func isTemporal(values []string) bool {
	sampled, parsed := 0, 0
	for _, v := range values {
		if v == "" {
			continue
		}
		sampled++
		if parsesAsTemporal(v) {
			parsed++
		}
		if sampled >= temporalSampleLimit {
			break
		}
	}
	if sampled == 0 {
		return false
	}
	return float64(parsed)/float64(sampled) >= temporalMajority
}

// SeedColumns ranks profiles and returns the top candidate names for key
// discovery, capped at limit (DefaultSeedLimit when limit <= 0).
//
// Ranking blends distinct ratio (dominant), name score, and completeness.
// Columns with no distinct values are excluded entirely: they can never
// contribute to a key and would only widen the search.
//
// The returned order is deterministic: equal ranks break lexicographically.
func SeedColumns(profiles []Column, limit int) []string {
	if limit <= 0 {
		limit = DefaultSeedLimit
	}

	type ranked struct {
		name string
		rank float64
	}

	cands := make([]ranked, 0, len(profiles))
	for _, p := range profiles {
		if p.DistinctCount == 0 {
			continue
		}
		r := 0.65*p.DistinctRatio + 0.25*p.NameScore + 0.10*(1.0-p.NullRatio)
		cands = append(cands, ranked{name: p.Name, rank: r})
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].rank == cands[j].rank {
			return cands[i].name < cands[j].name
		}
		return cands[i].rank > cands[j].rank
	})

	out := make([]string, 0, limit)
	for _, c := range cands {
		out = append(out, c.name)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// ByName indexes profiles for lookup without changing their order.
func ByName(profiles []Column) map[string]Column {
	m := make(map[string]Column, len(profiles))
	for _, p := range profiles {
		m[p.Name] = p
	}
	return m
}
