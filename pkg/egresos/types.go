package egresos

import (
	"database/sql"
	"time"
)

// SourceFile describes one yearly extract discovered in the data directory.
type SourceFile struct {
	Path       string    // Full path to the file
	Name       string    // Base name: "EGRE_DATOS_ABIERTOS_2019.csv"
	SizeBytes  int64     // File size in bytes
	ModifiedAt time.Time // Last modification time

	// Year is the discharge year derived from Name. Zero when YearErr is set.
	Year int
	// YearErr is non-nil when no year could be derived from the path.
	YearErr error
}

// ScanResult contains the outcome of scanning the data directory.
type ScanResult struct {
	// Files matched the source pattern, ordered by year then name.
	Files []SourceFile
	// Skipped holds names of entries that did not match the source pattern, in listing order.
	Skipped []string
}

// FileScanner discovers yearly extracts in a directory.
type FileScanner interface {
	// ScanDirectory lists dir and classifies its entries.
	// Returns an error wrapping ErrDataDirMissing when dir does not exist.
	ScanDirectory(dir string) (ScanResult, error)
}

// FileOutcome classifies how the pipeline finished with one file.
type FileOutcome string

const (
	OutcomeLoaded        FileOutcome = "loaded"
	OutcomeAlreadyLoaded FileOutcome = "already_loaded"
	OutcomeNoYear        FileOutcome = "no_year"
	OutcomeOutOfRange    FileOutcome = "out_of_range"
	OutcomeLoadFailed    FileOutcome = "load_failed"
	OutcomeEmpty         FileOutcome = "empty"
	OutcomePersistFailed FileOutcome = "persist_failed"
)

// FileResult records the pipeline result for one file.
type FileResult struct {
	File        SourceFile
	Outcome     FileOutcome
	RowsRead    int
	RowsLoaded  int
	RowsDropped int
	Checksum    string
	Err         error // Non-nil for failed outcomes
}

// RunSummary aggregates the results of one ingestion run.
type RunSummary struct {
	RunID   string
	Files   []FileResult
	Ignored []string // Non-matching directory entries
	Started time.Time
	Elapsed time.Duration
}

// ProcessedAny reports whether at least one file was written to the store.
func (s RunSummary) ProcessedAny() bool {
	for _, f := range s.Files {
		if f.Outcome == OutcomeLoaded {
			return true
		}
	}
	return false
}

// Count returns the number of files that finished with the given outcome.
func (s RunSummary) Count(outcome FileOutcome) int {
	n := 0
	for _, f := range s.Files {
		if f.Outcome == outcome {
			n++
		}
	}
	return n
}

// YearCount is one line of the validator report.
type YearCount struct {
	Year  sql.NullInt64
	Count int64
}

// ManifestEntry records a committed file load.
type ManifestEntry struct {
	FileName    string
	Year        int
	Checksum    string
	RowCount    int
	DroppedRows int
	RunID       string
	LoadedAt    time.Time
}
