package discovery

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is wrapped by every configuration failure: inverted size
// bounds, non-positive result limits, empty datasets, empty guided bases.
// Nothing partial is ever returned alongside it.
var ErrInvalidConfig = errors.New("discovery: invalid configuration")

// UnknownColumnError reports base or manual combination columns that do not
// exist in the dataset's schema.
//
// The run fails fast instead of silently degrading to auto-discovery: a
// caller who supplied a base expects every result to contain it, and an
// auto-mode fallback would violate that contract without any signal.
type UnknownColumnError struct {
	Dataset string
	Columns []string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("discovery: dataset %q has no column(s) %s", e.Dataset, strings.Join(e.Columns, ", "))
}
