// Package pipeline runs one sequential ETL pass: fetch the global
// index, filter it, mirror the selected profile files, flatten them
// and load the result into the relational store.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/oceanobs/floatchat/internal/argo"
	"github.com/oceanobs/floatchat/internal/catalog"
	"github.com/oceanobs/floatchat/internal/fetcher"
	"github.com/oceanobs/floatchat/internal/loader"
)

// ErrNoRecords is returned when no profile file yielded any records;
// the store is left untouched.
var ErrNoRecords = errors.New("no profile data was successfully processed")

// IndexSource fetches the raw decompressed global profile index.
type IndexSource interface {
	FetchIndex(ctx context.Context) ([]byte, error)
}

// Flattener turns one local profile file into records. Implementations
// handle their own per-file failures by returning an empty slice.
type Flattener func(path string, vars []string) []argo.Record

// Sink is the relational side of the run.
type Sink interface {
	EnsureSchema(ctx context.Context) error
	Truncate(ctx context.Context) error
	BulkLoad(ctx context.Context, csvPath string) (int64, error)
}

// Params configures one run.
type Params struct {
	Region      argo.Region
	Window      argo.TimeWindow
	DownloadDir string
	CSVPath     string
	Vars        []string
	DryRun      bool
}

// Run executes the stages in order, sequentially and synchronously.
// Per-item failures (one download, one file parse) are logged and
// skipped; index failures, an empty result set and store errors abort
// the run. With DryRun the run stops after the CSV artifact.
func Run(ctx context.Context, src IndexSource, dl fetcher.Downloader, flatten Flattener, sink Sink, p Params) error {
	log.Printf("fetching global profile index")
	raw, err := src.FetchIndex(ctx)
	if err != nil {
		return fmt.Errorf("fetch index: %w", err)
	}

	entries, err := catalog.ParseIndex(raw)
	if err != nil {
		return fmt.Errorf("parse index: %w", err)
	}
	log.Printf("filtering %d catalog entries", len(entries))

	selected := catalog.Filter(entries, p.Region, p.Window)
	log.Printf("%d profiles match the configured region and window", len(selected))

	paths, err := fetcher.Fetch(ctx, dl, selected, p.DownloadDir)
	if err != nil {
		return err
	}

	records := make([]argo.Record, 0)
	for _, path := range paths {
		log.Printf("processing: %s", path)
		records = append(records, flatten(path, p.Vars)...)
	}
	if len(records) == 0 {
		return ErrNoRecords
	}
	log.Printf("flattened %d records from %d files", len(records), len(paths))

	if err := loader.WriteCSV(records, p.CSVPath); err != nil {
		return fmt.Errorf("write %s: %w", p.CSVPath, err)
	}
	log.Printf("processed data saved to %s", p.CSVPath)

	if p.DryRun {
		log.Printf("dry-run: skipping database load (%d rows)", len(records))
		return nil
	}

	if err := sink.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := sink.Truncate(ctx); err != nil {
		return err
	}
	log.Printf("cleared existing rows from argo_profiles")

	n, err := sink.BulkLoad(ctx, p.CSVPath)
	if err != nil {
		return err
	}
	log.Printf("loaded %d rows into argo_profiles", n)
	return nil
}
