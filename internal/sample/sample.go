// Package sample selects the working row subset for a discovery run.
//
// Uniqueness scores computed on different samples are not comparable, so the
// policy is applied exactly once per run: the engine materializes one sampled
// dataset up front and every validation in that run reads it.
package sample

import (
	"math/rand"
	"sort"

	"keyscout/internal/dataset"
)

// Strategy selects how sampled row indices are chosen.
type Strategy int

const (
	// Systematic spreads the sample evenly across the dataset: sampled index
	// i maps to row i*total/target. It is the default because it is fast and
	// cache-friendly; it is only unsafe when row order correlates with a
	// column's values, in which case callers should request Random.
	Systematic Strategy = iota
	// Random draws a uniform sample using the policy seed, so repeated runs
	// with the same seed pick identical rows.
	Random
)

// Default size tiers. Below the full-scan limit no sampling happens at all;
// between the limit and the cap the sample targets MidTier rows; above the
// cap it targets MaxTier rows.
const (
	DefaultFullScanLimit = 100_000
	DefaultMidTier       = 500_000
	DefaultMaxTier       = 1_000_000

	// midTierUpper ends the mid-tier band at one million rows regardless of
	// the configured tier sizes. A FullScanLimit raised past it removes the
	// band entirely: everything above the limit samples at MaxTier.
	midTierUpper = 1_000_000
)

// Policy describes the sampling tiers and strategy for one run.
type Policy struct {
	// FullScanLimit: datasets at or under this row count are used whole.
	FullScanLimit int
	// MidTier is the sample size for datasets between FullScanLimit and
	// one million rows.
	MidTier int
	// MaxTier is the sample size cap for larger datasets.
	MaxTier int

	Strategy Strategy
	// Seed drives the Random strategy. Systematic ignores it.
	Seed int64
}

// DefaultPolicy returns the standard size tiers with systematic sampling.
func DefaultPolicy() Policy {
	return Policy{
		FullScanLimit: DefaultFullScanLimit,
		MidTier:       DefaultMidTier,
		MaxTier:       DefaultMaxTier,
		Strategy:      Systematic,
	}
}

func (p Policy) withDefaults() Policy {
	if p.FullScanLimit <= 0 {
		p.FullScanLimit = DefaultFullScanLimit
	}
	if p.MidTier <= 0 {
		p.MidTier = DefaultMidTier
	}
	if p.MaxTier <= 0 {
		p.MaxTier = DefaultMaxTier
	}
	return p
}

// Size returns the target sample size for a dataset of total rows.
// A result equal to total means "use the full dataset".
func (p Policy) Size(total int) int {
	p = p.withDefaults()
	switch {
	case total <= p.FullScanLimit:
		return total
	case total <= midTierUpper:
		if p.MidTier >= total {
			return total
		}
		return p.MidTier
	default:
		if p.MaxTier >= total {
			return total
		}
		return p.MaxTier
	}
}

// Rows returns the sampled row indices for a dataset of total rows, in
// ascending order. A nil result means the full dataset should be used.
func (p Policy) Rows(total int) []int {
	target := p.Size(total)
	if target >= total {
		return nil
	}

	switch p.Strategy {
	case Random:
		return randomRows(total, target, p.Seed)
	default:
		return systematicRows(total, target)
	}
}

// Apply materializes the policy against ds. When the policy selects the full
// dataset, ds itself is returned; otherwise a copy restricted to the sampled
// rows is produced and owned by the caller.
func Apply(ds *dataset.Dataset, p Policy) (*dataset.Dataset, error) {
	rows := p.Rows(ds.RowCount())
	if rows == nil {
		return ds, nil
	}
	return ds.Select(rows)
}

func systematicRows(total, target int) []int {
	// Fractional stride: an integer step of total/target truncates, and for
	// totals under twice the target that collapses the sample to a prefix of
	// the dataset. Mapping index i to i*total/target spans the whole range.
	out := make([]int, target)
	for i := range out {
		out[i] = i * total / target
	}
	return out
}

func randomRows(total, target int, seed int64) []int {
	rng := rand.New(rand.NewSource(seed))
	picked := rng.Perm(total)[:target]
	sort.Ints(picked)
	return picked
}
