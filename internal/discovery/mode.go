package discovery

import (
	"fmt"

	"keyscout/internal/dataset"
)

type modeKind int

const (
	modeAuto modeKind = iota
	modeGuided
	modeManual
)

// Mode selects how candidate combinations are produced. Construct one with
// Auto, Guided, or Manual; the zero value is Auto.
type Mode struct {
	kind   modeKind
	base   []string
	combos [][]string
}

// Auto searches combinations built from profiled seed columns.
func Auto() Mode { return Mode{kind: modeAuto} }

// Guided fixes base as a mandatory prefix and searches extensions of it.
// Every reported combination starts with base, in the given order.
func Guided(base ...string) Mode {
	return Mode{kind: modeGuided, base: append([]string(nil), base...)}
}

// Manual validates exactly the given combinations, no search.
func Manual(combos ...[]string) Mode {
	cp := make([][]string, len(combos))
	for i, c := range combos {
		cp[i] = append([]string(nil), c...)
	}
	return Mode{kind: modeManual, combos: cp}
}

func (m Mode) String() string {
	switch m.kind {
	case modeGuided:
		return "guided"
	case modeManual:
		return "manual"
	default:
		return "auto"
	}
}

// validate checks mode-specific inputs against the dataset schema before any
// search starts. Unknown columns fail the whole run: silently falling back
// to auto-discovery would return results that do not contain the requested
// base, with no signal to the caller.
func (m Mode) validate(ds *dataset.Dataset) error {
	switch m.kind {
	case modeGuided:
		if len(m.base) == 0 {
			return fmt.Errorf("%w: guided mode requires at least one base column", ErrInvalidConfig)
		}
		return checkCombination(ds, m.base, "base")
	case modeManual:
		if len(m.combos) == 0 {
			return fmt.Errorf("%w: manual mode requires at least one combination", ErrInvalidConfig)
		}
		for _, combo := range m.combos {
			if err := checkCombination(ds, combo, "combination"); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkCombination(ds *dataset.Dataset, columns []string, what string) error {
	if len(columns) == 0 {
		return fmt.Errorf("%w: empty %s", ErrInvalidConfig, what)
	}
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if _, dup := seen[c]; dup {
			return fmt.Errorf("%w: duplicate column %q in %s", ErrInvalidConfig, c, what)
		}
		seen[c] = struct{}{}
	}
	if missing := ds.MissingColumns(columns); len(missing) > 0 {
		return &UnknownColumnError{Dataset: ds.Name(), Columns: missing}
	}
	return nil
}
