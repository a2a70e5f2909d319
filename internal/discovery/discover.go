// Package discovery finds column combinations that uniquely identify rows of
// a tabular dataset.
//
// A run profiles the dataset's columns, samples the rows when the dataset is
// large, then searches candidate combinations in one of three modes: auto
// (beam search over ranked seed columns), guided (a caller-fixed base prefix
// extended by seed columns), or manual (validate exactly the supplied
// combinations). A combination's score is 100 times the fraction of rows its
// composed value identifies uniquely; combinations clearing a size-dependent
// threshold are reported.
//
// The search is heuristic. It trades exhaustiveness for speed on wide
// datasets, so absence from the results does not prove a combination is not
// a key, and a reported key of size n may contain a smaller key the beam
// never scored on its own.
package discovery

import (
	"context"
	"fmt"
	"time"

	"keyscout/internal/dataset"
	"keyscout/internal/metrics"
	"keyscout/internal/profile"
	"keyscout/internal/sample"
)

// Discover runs one key-discovery pass over ds.
//
// The same dataset, mode, and config always produce the same Result; worker
// scheduling never leaks into the output ordering.
//
// Guided mode can report the base by itself: immediately when the base is
// already a perfect key, even below MinSize, since the caller asked about
// exactly those columns; or, when no extension qualifies, if the base clears
// the threshold for its own size and is at least MinSize columns.
//
// Errors:
//   - ErrInvalidConfig (wrapped) for bad size bounds, a non-positive result
//     cap, an empty dataset, or an empty guided base.
//   - *UnknownColumnError when a guided base or manual combination names a
//     column the dataset does not have.
//   - ctx.Err() when the caller's context is canceled mid-run.
//
// A validation budget expiring is not an error: the run returns what it
// validated and sets Result.Truncated.
func Discover(ctx context.Context, ds *dataset.Dataset, mode Mode, cfg Config) (Result, error) {
	start := time.Now()
	cfg = cfg.withDefaults()

	if err := cfg.validate(); err != nil {
		return Result{}, err
	}
	if ds == nil {
		return Result{}, fmt.Errorf("%w: nil dataset", ErrInvalidConfig)
	}
	if ds.RowCount() == 0 {
		return Result{}, fmt.Errorf("%w: dataset %q has no rows", ErrInvalidConfig, ds.Name())
	}
	if err := mode.validate(ds); err != nil {
		return Result{}, err
	}

	// Sampling happens exactly once per run. Scores from different samples
	// are not comparable, so every validation below reads this one subset.
	working, err := sample.Apply(ds, cfg.Sample)
	if err != nil {
		return Result{}, fmt.Errorf("sampling dataset %q: %w", ds.Name(), err)
	}
	if working.RowCount() != ds.RowCount() {
		cfg.Logger.Printf("dataset %q: sampled %d of %d rows", ds.Name(), working.RowCount(), ds.RowCount())
	}

	profiles := profile.Columns(working)
	seeds := profile.SeedColumns(profiles, cfg.SeedLimit)
	cfg.Logger.Printf("dataset %q: %d columns profiled, %d seeds selected, mode %s",
		ds.Name(), len(profiles), len(seeds), mode)

	s := &searcher{
		val:   &validator{ds: working},
		seeds: seeds,
		cfg:   cfg,
		log:   cfg.Logger,
		met:   cfg.Metrics,
	}

	var (
		recorded  []scoredCombination
		truncated bool
	)
	switch mode.kind {
	case modeGuided:
		recorded, truncated, err = s.guided(ctx, mode.base)
	case modeManual:
		recorded, truncated, err = s.manual(ctx, mode.combos)
	default:
		recorded, truncated, err = s.auto(ctx)
	}

	status := "ok"
	switch {
	case err != nil:
		status = "error"
	case truncated:
		status = "truncated"
	}
	runLabels := metrics.Labels{"mode": mode.String(), "status": status}
	cfg.Metrics.ObserveHistogram(metrics.RunDuration, time.Since(start).Seconds(), runLabels)
	cfg.Metrics.IncCounter(metrics.RunsTotal, 1, runLabels)

	if err != nil {
		return Result{}, err
	}

	keys := aggregate(recorded, cfg.MaxResults)
	cfg.Logger.Printf("dataset %q: discovery finished in %s, %d key(s) reported",
		ds.Name(), time.Since(start).Round(time.Millisecond), len(keys))
	return Result{Keys: keys, Truncated: truncated}, nil
}
