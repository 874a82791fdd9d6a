package egresos

import "context"

// IngestConfig describes one ingestion run.
type IngestConfig struct {
	DataDir string // Directory scanned for yearly extracts
	Table   string // Destination table
	MinYear int    // Earliest accepted year, 0 for no bound
	MaxYear int    // Latest accepted year, 0 for no bound
}

// Ingester loads yearly extracts into the destination table.
type Ingester interface {
	// Run processes every matching file in DataDir, then prints the per-year report.
	// Only a missing data directory or a cancelled context is returned as an error;
	// per-file failures are logged and recorded in the summary.
	Run(ctx context.Context, config IngestConfig) (RunSummary, error)

	// RunFile processes a single file regardless of the directory pattern,
	// then prints the per-year report.
	RunFile(ctx context.Context, config IngestConfig, path string) (RunSummary, error)
}
