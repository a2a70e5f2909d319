// Command runs lists discovery runs persisted by cmd/discover, or shows one
// run with its keys.
//
// DSN resolution is a subset of cmd/discover's: the -dsn flag wins, then the
// DSN environment variable, then the backend's local default (keyscout.db
// for sqlite). Component DSN_* variables are a cmd/discover feature; this
// command is for quick lookups, not deployment wiring.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"keyscout/internal/report"
	"keyscout/internal/storage"

	_ "keyscout/internal/storage/all"
)

func main() {
	var (
		flagStore   = flag.String("store", "sqlite", "Storage backend: sqlite|postgres|mssql")
		flagDSN     = flag.String("dsn", "", "Storage DSN (default: DSN env var, then backend default)")
		flagDataset = flag.String("dataset", "", "Only list runs for this dataset")
		flagLimit   = flag.Int("limit", 20, "Maximum runs to list (0 = all)")
		flagID      = flag.String("id", "", "Show one run by ID instead of listing")
		flagTimeout = flag.Duration("timeout", time.Minute, "Overall timeout")
	)
	flag.Parse()

	dsn := strings.TrimSpace(*flagDSN)
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv("DSN"))
	}
	if dsn == "" && *flagStore == "sqlite" {
		dsn = "file:keyscout.db"
	}
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "missing -dsn (or DSN env var)")
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *flagTimeout)
	defer cancel()

	repo, err := storage.New(ctx, storage.Config{Kind: *flagStore, DSN: dsn})
	if err != nil {
		log.Fatalf("open %s store: %v", *flagStore, err)
	}
	defer repo.Close()

	if *flagID != "" {
		run, err := repo.GetRun(ctx, *flagID)
		if err != nil {
			log.Fatalf("get run: %v", err)
		}
		fmt.Println(report.RunsTable([]storage.Run{run}))
		if len(run.Keys) == 0 {
			fmt.Println("no keys recorded")
			return
		}
		fmt.Println(report.KeysTable(run.Keys))
		return
	}

	runs, err := repo.ListRuns(ctx, *flagDataset, *flagLimit)
	if err != nil {
		log.Fatalf("list runs: %v", err)
	}
	if len(runs) == 0 {
		fmt.Println("no runs stored")
		return
	}
	fmt.Println(report.RunsTable(runs))
}
