// Package metrics defines the minimal metrics surface the discovery engine
// emits through. Core code depends only on Backend; concrete backends live
// in subpackages (see metrics/datadog).
package metrics

// Labels carry low-cardinality metric dimensions (e.g. size, status, mode).
type Labels map[string]string

// Backend receives engine metrics. Implementations must be safe for
// concurrent use; candidate validation calls these from worker goroutines.
type Backend interface {
	// IncCounter adds delta to a named counter. Backends may ignore names
	// they do not recognize.
	IncCounter(name string, delta float64, labels Labels)

	// ObserveHistogram records one sample (seconds for durations).
	ObserveHistogram(name string, value float64, labels Labels)

	// Flush submits buffered metrics now. Close implies a final Flush.
	Flush() error
	Close() error
}

// Metric names emitted by the discovery engine.
const (
	CandidatesTotal  = "keyscout_candidates_total"      // labels: size, status (validated|kept|rejected)
	PerfectKeysTotal = "keyscout_perfect_keys_total"    // labels: size
	SizeDuration     = "keyscout_size_duration_seconds" // labels: size
	RunDuration      = "keyscout_run_duration_seconds"  // labels: mode, status
	RunsTotal        = "keyscout_runs_total"            // labels: mode, status
)

// Nop is a Backend that discards everything. It is the engine default so
// callers opt in to metrics rather than being forced to wire them.
type Nop struct{}

func (Nop) IncCounter(string, float64, Labels)       {}
func (Nop) ObserveHistogram(string, float64, Labels) {}
func (Nop) Flush() error                             { return nil }
func (Nop) Close() error                             { return nil }

var _ Backend = Nop{}
