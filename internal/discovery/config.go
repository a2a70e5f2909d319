package discovery

import (
	"fmt"
	"runtime"
	"time"

	"keyscout/internal/metrics"
	"keyscout/internal/profile"
	"keyscout/internal/sample"
)

// Logger is the logging seam used throughout the engine. *log.Logger
// satisfies it; tests substitute a recorder.
type Logger interface {
	Printf(format string, v ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Default search parameters.
const (
	DefaultMinSize    = 2
	DefaultMaxSize    = 10
	DefaultMaxResults = 120
	DefaultGoodEnough = 3

	// Datasets wider than this get a doubled result budget, otherwise the
	// per-size slice of the budget starves on hundreds of columns.
	wideDatasetColumns = 200

	// Lower bound on how many combinations each size may report, regardless
	// of how thin MaxResults spreads across the size range.
	minCombosPerSize = 10

	// Upper bound on generated candidates per size. Survivor-times-seed
	// growth is quadratic in seed count; generation emits candidates in
	// survivor rank order, so the cap keeps the best ones.
	maxCandidatesPerSize = 2000
)

// Config carries the tunable parameters of one discovery run.
// The zero value is not usable: size bounds and the result cap are
// mandatory. Start from DefaultConfig.
type Config struct {
	// MinSize and MaxSize bound the reported combination sizes, inclusive.
	MinSize int
	MaxSize int

	// MaxResults caps the total number of reported combinations.
	MaxResults int

	// SeedLimit caps how many profiled columns feed candidate generation.
	// 0 means profile.DefaultSeedLimit.
	SeedLimit int

	// GoodEnough stops the search once this many perfect keys (score 100)
	// have been recorded. 0 means DefaultGoodEnough.
	GoodEnough int

	// PerSizeBudget limits wall-clock time spent validating one candidate
	// size. When it expires the run keeps everything validated so far and
	// reports Truncated. 0 means no budget.
	PerSizeBudget time.Duration

	// Workers is the number of concurrent validation goroutines.
	// 0 means runtime.NumCPU().
	Workers int

	// Sample controls row sampling; the zero value uses the default tiers.
	Sample sample.Policy

	// Logger receives progress lines. nil silences them.
	Logger Logger

	// Metrics receives engine counters and timings. nil discards them.
	Metrics metrics.Backend
}

// DefaultConfig returns the standard parameters for a dataset with the given
// column count.
func DefaultConfig(columnCount int) Config {
	cfg := Config{
		MinSize:    DefaultMinSize,
		MaxSize:    DefaultMaxSize,
		MaxResults: DefaultMaxResults,
		SeedLimit:  profile.DefaultSeedLimit,
		GoodEnough: DefaultGoodEnough,
		Sample:     sample.DefaultPolicy(),
	}
	if columnCount > wideDatasetColumns {
		cfg.MaxResults *= 2
	}
	return cfg
}

func (c Config) withDefaults() Config {
	if c.SeedLimit <= 0 {
		c.SeedLimit = profile.DefaultSeedLimit
	}
	if c.GoodEnough <= 0 {
		c.GoodEnough = DefaultGoodEnough
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Logger == nil {
		c.Logger = nopLogger{}
	}
	if c.Metrics == nil {
		c.Metrics = metrics.Nop{}
	}
	return c
}

func (c Config) validate() error {
	if c.MinSize < 1 {
		return fmt.Errorf("%w: min size %d, must be at least 1", ErrInvalidConfig, c.MinSize)
	}
	if c.MaxSize < c.MinSize {
		return fmt.Errorf("%w: max size %d below min size %d", ErrInvalidConfig, c.MaxSize, c.MinSize)
	}
	if c.MaxResults <= 0 {
		return fmt.Errorf("%w: max results %d, must be positive", ErrInvalidConfig, c.MaxResults)
	}
	return nil
}

// combosPerSize splits the overall result budget evenly across the sizes the
// search reports.
func (c Config) combosPerSize() int {
	sizes := c.MaxSize - c.MinSize + 1
	per := c.MaxResults / sizes
	if per < minCombosPerSize {
		per = minCombosPerSize
	}
	return per
}
