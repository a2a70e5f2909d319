// Command discover finds column combinations that uniquely identify rows in
// a tabular dataset (CSV or HTML table).
//
// Modes
//
//   - Default: automatic discovery. Columns are profiled, the most promising
//     ones seed a size-by-size search, and combinations whose uniqueness
//     score clears a size-dependent threshold are reported.
//   - -base "col1,col2": guided discovery. Every reported combination starts
//     with the given columns; the search looks for extensions that complete
//     them into a key.
//   - -validate "a+b;c": no search. The listed combinations are scored
//     directly and the passing ones reported.
//
// Output is a table of discovered keys on stdout. With -url-b, the keys are
// re-validated against a second file and the ones that also hold there are
// printed separately, which is the quick way to check that a key is a
// property of the data model rather than of one extract.
//
// # DSN overrides
//
// With -store, the run is persisted. The backend DSN resolves with strict,
// deterministic precedence:
//
//  1. -dsn flag
//  2. DSN env var (full DSN string)
//  3. DSN_HOST / DSN_PORT / DSN_USER / DSN_PASSWORD / DSN_DB component vars,
//     plus backend knobs: DSN_SSLMODE (postgres), DSN_ENCRYPT (mssql),
//     DSN_SQLITE (sqlite path or full DSN), DSN_PARAMS (extra query params)
//  4. A backend-appropriate local default
//
// This keeps containerized environments (Compose, CI) able to point at real
// databases without editing command lines.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"keyscout/internal/dataset"
	"keyscout/internal/discovery"
	"keyscout/internal/metrics/datadog"
	"keyscout/internal/profile"
	"keyscout/internal/report"
	"keyscout/internal/sample"
	"keyscout/internal/storage"

	// register all storage backends with the factory; -store selects one at
	// runtime.
	_ "keyscout/internal/storage/all"
)

func main() {
	var (
		// flagURL is the path (or file:// URL) of the dataset to analyze.
		flagURL = flag.String("url", "", "Path or file:// URL of the source file (CSV or HTML)")

		// flagURLB is an optional second extract of the same data model.
		// Discovered keys are re-validated against it so a key that only
		// holds in one file is visible immediately.
		flagURLB = flag.String("url-b", "", "Optional second file; discovered keys are re-validated against it")

		// flagFormat forces the input format. "auto" decides by extension
		// (.html/.htm means HTML table, anything else CSV).
		flagFormat = flag.String("format", "auto", "Input format: auto|csv|html")

		// flagDelimiter forces the CSV field separator. Empty sniffs it from
		// the first line among ',', ';', tab, and '|'.
		flagDelimiter = flag.String("delimiter", "", "CSV delimiter; empty sniffs from the first line")

		// flagEncoding selects the source charset for CSV input.
		flagEncoding = flag.String("encoding", "utf-8", "Input encoding: utf-8|latin-1|windows-1252")

		// flagNoHeader treats the first CSV record as data; columns are then
		// named positionally (column_1, column_2, ...).
		flagNoHeader = flag.Bool("no-header", false, "Treat the first CSV row as data")

		// flagSelector narrows which HTML table is read when the document
		// contains several. Empty means the first <table>.
		flagSelector = flag.String("selector", "", "CSS selector of the HTML table to read")

		// flagMaxRows bounds ingestion, mainly for quick looks at very large
		// files. 0 reads everything; sampling still applies afterwards.
		flagMaxRows = flag.Int("max-rows", 0, "Stop reading after this many rows (0 = all)")

		// flagBase switches to guided mode: comma-separated columns that
		// every reported key must start with.
		flagBase = flag.String("base", "", "Comma-separated base columns (guided mode)")

		// flagValidate switches to manual mode: combinations separated by
		// ';', columns within a combination joined with '+'.
		flagValidate = flag.String("validate", "", "Combinations to score directly, e.g. 'region+store;order_id' (manual mode)")

		// Search bounds. Defaults match the engine defaults; the result cap
		// is doubled automatically for datasets wider than 200 columns.
		flagMin        = flag.Int("min", discovery.DefaultMinSize, "Smallest combination size to report")
		flagMax        = flag.Int("max", discovery.DefaultMaxSize, "Largest combination size to report")
		flagLimit      = flag.Int("limit", 0, "Cap on reported combinations (0 = engine default)")
		flagSeedLimit  = flag.Int("seed-limit", 0, "Cap on seed columns feeding the search (0 = engine default)")
		flagGoodEnough = flag.Int("good-enough", 0, "Stop after this many perfect keys (0 = engine default)")
		flagBudget     = flag.Duration("size-budget", 0, "Wall-clock budget per candidate size (0 = unlimited)")
		flagWorkers    = flag.Int("workers", 0, "Validation goroutines (0 = one per CPU)")

		// Sampling. Large datasets are validated against a row sample; see
		// the engine defaults for the size tiers.
		flagSample     = flag.String("sample", "systematic", "Sampling strategy for large datasets: systematic|random")
		flagSampleSeed = flag.Int64("sample-seed", 1, "Seed for random sampling")

		// flagShowProfile also prints the per-column profile table, which is
		// usually the first thing to look at when no keys are found.
		flagShowProfile = flag.Bool("show-profile", false, "Also print the column profile table")

		// flagStore persists the run so results can be compared over time.
		flagStore = flag.String("store", "", "Persist the run: sqlite|postgres|mssql (empty = don't persist)")
		flagDSN   = flag.String("dsn", "", "Storage DSN override (highest priority)")

		// flagMetrics selects the metrics backend: flag, then METRICS_BACKEND
		// env var. Discovery itself never depends on metrics delivery.
		flagMetrics = flag.String("metrics-backend", "", "Metrics backend: datadog|none (default: METRICS_BACKEND env or none)")

		// flagTimeout bounds the whole invocation, loading included.
		flagTimeout = flag.Duration("timeout", 10*time.Minute, "Overall run timeout")
	)
	flag.Parse()

	if strings.TrimSpace(*flagURL) == "" {
		fmt.Fprintln(os.Stderr, "missing -url")
		flag.Usage()
		os.Exit(2)
	}
	if *flagBase != "" && *flagValidate != "" {
		fmt.Fprintln(os.Stderr, "-base and -validate are mutually exclusive")
		os.Exit(2)
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)

	ctx, cancel := context.WithTimeout(context.Background(), *flagTimeout)
	defer cancel()

	ds, err := loadDataset(*flagURL, loadOptions{
		format:    *flagFormat,
		delimiter: *flagDelimiter,
		encoding:  *flagEncoding,
		noHeader:  *flagNoHeader,
		selector:  *flagSelector,
		maxRows:   *flagMaxRows,
	})
	if err != nil {
		log.Fatalf("load %s: %v", *flagURL, err)
	}
	logger.Printf("loaded %q: %d columns, %d rows", ds.Name(), len(ds.Columns()), ds.RowCount())

	cfg := discovery.DefaultConfig(len(ds.Columns()))
	cfg.MinSize = *flagMin
	cfg.MaxSize = *flagMax
	if *flagLimit > 0 {
		cfg.MaxResults = *flagLimit
	}
	cfg.SeedLimit = *flagSeedLimit
	cfg.GoodEnough = *flagGoodEnough
	cfg.PerSizeBudget = *flagBudget
	cfg.Workers = *flagWorkers
	cfg.Logger = logger
	if *flagSample == "random" {
		cfg.Sample.Strategy = sample.Random
		cfg.Sample.Seed = *flagSampleSeed
	}

	metricsClose := initMetrics(&cfg, *flagMetrics, logger)
	defer metricsClose()

	mode := discovery.Auto()
	switch {
	case *flagBase != "":
		mode = discovery.Guided(parseColumnsCSV(*flagBase)...)
	case *flagValidate != "":
		combos := parseCombos(*flagValidate)
		if len(combos) == 0 {
			log.Fatalf("-validate %q: no combinations parsed", *flagValidate)
		}
		mode = discovery.Manual(combos...)
	}

	started := time.Now().UTC()
	res, err := discovery.Discover(ctx, ds, mode, cfg)
	if err != nil {
		log.Fatalf("discover: %v", err)
	}
	finished := time.Now().UTC()

	if *flagShowProfile {
		fmt.Println(report.ProfileTable(profile.Columns(ds)))
	}

	if len(res.Keys) == 0 {
		// Predictable line for scripts even when nothing was found.
		fmt.Println("no key combinations found")
	} else {
		fmt.Println(report.KeysTable(res.Keys))
	}
	if res.Truncated {
		fmt.Println("note: validation budget expired; results are partial")
	}

	if *flagURLB != "" && len(res.Keys) > 0 {
		checkSecondFile(ctx, *flagURLB, res.Keys, cfg, logger)
	}

	if *flagStore != "" {
		saveRun(ctx, *flagStore, *flagDSN, storage.Run{
			ID:          uuid.NewString(),
			Dataset:     ds.Name(),
			Mode:        mode.String(),
			RowCount:    ds.RowCount(),
			SampledRows: cfg.Sample.Size(ds.RowCount()),
			Truncated:   res.Truncated,
			StartedAt:   started,
			FinishedAt:  finished,
			Keys:        res.Keys,
		}, logger)
	}
}

// checkSecondFile re-validates keys discovered in file A against file B and
// prints the ones that hold there too. Manual mode scores exactly the given
// combinations, so no new keys appear.
func checkSecondFile(ctx context.Context, path string, keys [][]string, cfg discovery.Config, logger *log.Logger) {
	dsB, err := loadDataset(path, loadOptions{format: "auto"})
	if err != nil {
		log.Fatalf("load %s: %v", path, err)
	}
	logger.Printf("loaded %q: %d columns, %d rows", dsB.Name(), len(dsB.Columns()), dsB.RowCount())

	resB, err := discovery.Discover(ctx, dsB, discovery.Manual(keys...), cfg)
	if err != nil {
		log.Fatalf("validate against %s: %v", dsB.Name(), err)
	}

	fmt.Printf("keys also holding in %q: %d of %d\n", dsB.Name(), len(resB.Keys), len(keys))
	if len(resB.Keys) > 0 {
		fmt.Println(report.KeysTable(resB.Keys))
	}
}

// saveRun persists one run using the configured backend. Storage failures
// are fatal here: the caller asked for persistence, silently dropping the
// run would defeat the point.
func saveRun(ctx context.Context, kind, dsnFlag string, run storage.Run, logger *log.Logger) {
	kind = normalizeBackend(kind)
	dsn, err := resolveDSN(kind, strings.TrimSpace(dsnFlag))
	if err != nil {
		log.Fatalf("resolve dsn: %v", err)
	}

	repo, err := storage.New(ctx, storage.Config{Kind: kind, DSN: dsn})
	if err != nil {
		log.Fatalf("open %s store: %v", kind, err)
	}
	defer repo.Close()

	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}
	if err := repo.SaveRun(ctx, run); err != nil {
		log.Fatalf("save run: %v", err)
	}
	logger.Printf("run %s saved to %s", run.ID, kind)
}

// initMetrics wires the selected metrics backend into cfg and returns its
// shutdown function. Backend selection: flag, then METRICS_BACKEND env var.
// Init failures log and fall back to no metrics rather than failing the run.
func initMetrics(cfg *discovery.Config, backend string, logger *log.Logger) func() {
	if backend == "" {
		backend = os.Getenv("METRICS_BACKEND")
	}

	switch backend {
	case "datadog":
		b, err := datadog.NewBackend(context.Background(), datadog.Options{
			JobName: "keyscout_discover",
			Tags:    datadog.ParseTagsCSV(os.Getenv("METRICS_TAGS")),
		})
		if err != nil {
			logger.Printf("metrics: datadog init failed: %v; metrics disabled", err)
			return func() {}
		}
		cfg.Metrics = b
		return func() {
			// Close stops the periodic flush loop and flushes one last time.
			if err := b.Close(); err != nil {
				logger.Printf("metrics: datadog close: %v", err)
			}
		}
	case "", "none":
		return func() {}
	default:
		logger.Printf("metrics: unknown backend %q; metrics disabled", backend)
		return func() {}
	}
}

type loadOptions struct {
	format    string
	delimiter string
	encoding  string
	noHeader  bool
	selector  string
	maxRows   int
}

func loadDataset(path string, opt loadOptions) (*dataset.Dataset, error) {
	path = strings.TrimPrefix(path, "file://")

	format := opt.format
	if format == "" || format == "auto" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".html", ".htm":
			format = "html"
		default:
			format = "csv"
		}
	}

	switch format {
	case "html":
		return dataset.LoadHTMLTable(path, dataset.HTMLOptions{
			Selector: opt.selector,
			MaxRows:  opt.maxRows,
		})
	case "csv":
		var delim rune
		if opt.delimiter != "" {
			delim = []rune(opt.delimiter)[0]
		}
		return dataset.LoadCSV(path, dataset.CSVOptions{
			Delimiter: delim,
			Encoding:  opt.encoding,
			MaxRows:   opt.maxRows,
			NoHeader:  opt.noHeader,
		})
	default:
		return nil, fmt.Errorf("unsupported format %q", opt.format)
	}
}

// parseColumnsCSV splits a comma-separated column list, trimming whitespace
// and dropping empty entries.
func parseColumnsCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseCombos parses the -validate syntax: combinations separated by ';',
// columns within a combination joined with '+'.
func parseCombos(s string) [][]string {
	var out [][]string
	for _, part := range strings.Split(s, ";") {
		var combo []string
		for _, col := range strings.Split(part, "+") {
			col = strings.TrimSpace(col)
			if col != "" {
				combo = append(combo, col)
			}
		}
		if len(combo) > 0 {
			out = append(out, combo)
		}
	}
	return out
}
