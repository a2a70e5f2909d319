// Package dataset provides the immutable, in-memory tabular structure the
// key-discovery engine reads, plus loaders for delimited text and HTML tables.
//
// A Dataset stores values column-major: profiling and combination validation
// walk whole columns, so keeping each column contiguous avoids chasing row
// slices in the hot loops.
//
// Values are canonical strings. The empty string means "missing"; loaders
// trim edge whitespace so "  " and "" profile identically.
package dataset

import (
	"fmt"
	"sort"
)

// Dataset is an ordered set of named columns, each holding one value per row.
//
// Ownership contract:
//   - A Dataset is immutable after construction.
//   - The discovery engine only reads it; sampled copies produced by Select
//     are owned by whoever asked for them.
type Dataset struct {
	name     string
	columns  []string
	colIndex map[string]int
	// values[c][r] is the value of column c at row r.
	values [][]string
	rows   int
}

// New builds a Dataset from row-major records aligned to columns.
//
// Edge cases:
//   - Records with a field count different from len(columns) are rejected;
//     loaders are expected to have filtered those already.
//   - Duplicate column names are rejected: combination identity is defined
//     by column name, so ambiguity here would corrupt every downstream score.
func New(name string, columns []string, records [][]string) (*Dataset, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("dataset %q: no columns", name)
	}

	colIndex := make(map[string]int, len(columns))
	for i, c := range columns {
		if c == "" {
			return nil, fmt.Errorf("dataset %q: empty column name at position %d", name, i)
		}
		if _, dup := colIndex[c]; dup {
			return nil, fmt.Errorf("dataset %q: duplicate column %q", name, c)
		}
		colIndex[c] = i
	}

	values := make([][]string, len(columns))
	for i := range values {
		values[i] = make([]string, 0, len(records))
	}

	for ri, rec := range records {
		if len(rec) != len(columns) {
			return nil, fmt.Errorf("dataset %q: record %d has %d fields, want %d", name, ri, len(rec), len(columns))
		}
		for ci := range columns {
			values[ci] = append(values[ci], rec[ci])
		}
	}

	return &Dataset{
		name:     name,
		columns:  append([]string(nil), columns...),
		colIndex: colIndex,
		values:   values,
		rows:     len(records),
	}, nil
}

// Name returns the dataset's logical name (normalized by loaders).
func (d *Dataset) Name() string { return d.name }

// Columns returns the ordered column names. Callers must not mutate the
// returned slice.
func (d *Dataset) Columns() []string { return d.columns }

// RowCount returns the number of rows.
func (d *Dataset) RowCount() int { return d.rows }

// HasColumn reports whether name is a column of this dataset.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.colIndex[name]
	return ok
}

// ColumnIndex returns the positional index of a named column.
func (d *Dataset) ColumnIndex(name string) (int, bool) {
	i, ok := d.colIndex[name]
	return i, ok
}

// Column returns the full value slice for a named column. Callers must not
// mutate the returned slice.
func (d *Dataset) Column(name string) ([]string, bool) {
	i, ok := d.colIndex[name]
	if !ok {
		return nil, false
	}
	return d.values[i], true
}

// ColumnAt returns the value slice for a column by positional index.
func (d *Dataset) ColumnAt(i int) []string { return d.values[i] }

// Value returns the value of column c at row r.
func (d *Dataset) Value(c, r int) string { return d.values[c][r] }

// Select produces a new Dataset restricted to the given row indices, in the
// given order. It copies values so the result does not alias the source.
//
// When to use:
//   - The sampler calls Select once per discovery run to materialize the
//     working subset; the engine then treats the copy as its own.
//
// Edge cases:
//   - Out-of-range indices are an error; the sampler never produces them,
//     so a failure here indicates a caller bug rather than bad data.
func (d *Dataset) Select(rows []int) (*Dataset, error) {
	for _, r := range rows {
		if r < 0 || r >= d.rows {
			return nil, fmt.Errorf("dataset %q: row index %d out of range [0,%d)", d.name, r, d.rows)
		}
	}

	values := make([][]string, len(d.columns))
	for ci := range d.columns {
		src := d.values[ci]
		dst := make([]string, len(rows))
		for i, r := range rows {
			dst[i] = src[r]
		}
		values[ci] = dst
	}

	return &Dataset{
		name:     d.name,
		columns:  append([]string(nil), d.columns...),
		colIndex: d.colIndex,
		values:   values,
		rows:     len(rows),
	}, nil
}

// MissingColumns returns, sorted, the names that do not exist in the schema.
// The discovery engine uses this to fail fast on unknown base columns.
func (d *Dataset) MissingColumns(names []string) []string {
	var missing []string
	for _, n := range names {
		if !d.HasColumn(n) {
			missing = append(missing, n)
		}
	}
	sort.Strings(missing)
	return missing
}
