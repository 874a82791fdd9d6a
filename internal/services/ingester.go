// Package services wires the pipeline stages into an ingestion run.
package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/vvka-141/egresos/internal/metadata"
	"github.com/vvka-141/egresos/pkg/egresos"
)

// IngestionService implements egresos.Ingester.
// Not safe for concurrent Run calls on the same instance.
type IngestionService struct {
	scanner      egresos.FileScanner
	loader       BatchLoader
	preprocessor BatchPreprocessor
	store        BatchStore
	validator    ReportValidator
	logger       egresos.Logger
	observer     RunObserver
	now          func() time.Time
	newRunID     func() string
}

var _ egresos.Ingester = (*IngestionService)(nil)

// NewIngestionService creates an IngestionService with all dependencies injected.
// Panics on nil dependencies.
func NewIngestionService(
	scanner egresos.FileScanner,
	loader BatchLoader,
	preprocessor BatchPreprocessor,
	store BatchStore,
	validator ReportValidator,
	logger egresos.Logger,
) *IngestionService {
	if scanner == nil {
		panic("scanner cannot be nil")
	}
	if loader == nil {
		panic("loader cannot be nil")
	}
	if preprocessor == nil {
		panic("preprocessor cannot be nil")
	}
	if store == nil {
		panic("store cannot be nil")
	}
	if validator == nil {
		panic("validator cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &IngestionService{
		scanner:      scanner,
		loader:       loader,
		preprocessor: preprocessor,
		store:        store,
		validator:    validator,
		logger:       logger,
		observer:     nopObserver{},
		now:          time.Now,
		newRunID:     uuid.NewString,
	}
}

// WithObserver returns a copy of s reporting to observer.
func (s *IngestionService) WithObserver(observer RunObserver) *IngestionService {
	clone := *s
	if observer == nil {
		observer = nopObserver{}
	}
	clone.observer = observer
	return &clone
}

// Run implements egresos.Ingester.
func (s *IngestionService) Run(ctx context.Context, config egresos.IngestConfig) (egresos.RunSummary, error) {
	summary := s.begin()

	scan, err := s.scanner.ScanDirectory(config.DataDir)
	if err != nil {
		if errors.Is(err, egresos.ErrDataDirMissing) {
			s.logger.Error("Data directory '%s' not found. Create it and place the CSV files inside.", config.DataDir)
		}
		return summary, err
	}

	s.logger.Info("Checking files in: %s", config.DataDir)
	for _, name := range scan.Skipped {
		s.logger.Info("Skipping non-matching file: %s", name)
	}
	summary.Ignored = scan.Skipped

	for _, f := range scan.Files {
		if err := ctx.Err(); err != nil {
			return s.finish(summary), err
		}
		s.record(&summary, s.processFile(ctx, summary.RunID, config, f))
	}

	return s.complete(ctx, config, summary), nil
}

// RunFile implements egresos.Ingester.
func (s *IngestionService) RunFile(ctx context.Context, config egresos.IngestConfig, path string) (egresos.RunSummary, error) {
	summary := s.begin()

	year, yerr := metadata.ExtractYear(path)
	f := egresos.SourceFile{Path: path, Name: filepath.Base(path), Year: year, YearErr: yerr}
	s.record(&summary, s.processFile(ctx, summary.RunID, config, f))

	return s.complete(ctx, config, summary), ctx.Err()
}

func (s *IngestionService) begin() egresos.RunSummary {
	summary := egresos.RunSummary{RunID: s.newRunID(), Started: s.now()}
	s.logger.Verbose("Starting run %s", summary.RunID)
	return summary
}

func (s *IngestionService) record(summary *egresos.RunSummary, res egresos.FileResult) {
	summary.Files = append(summary.Files, res)
	s.observer.ObserveFile(res)
}

func (s *IngestionService) finish(summary egresos.RunSummary) egresos.RunSummary {
	finished := s.now()
	summary.Elapsed = finished.Sub(summary.Started)
	s.observer.ObserveRun(summary, finished)
	return summary
}

// complete logs the run outcome and always runs the validator.
func (s *IngestionService) complete(ctx context.Context, config egresos.IngestConfig, summary egresos.RunSummary) egresos.RunSummary {
	if summary.ProcessedAny() {
		s.logger.Info("Finished processing all new files.")
	} else {
		s.logger.Info("No new files were processed or saved to the database.")
	}

	counts := s.validator.Validate(ctx, config.Table)
	s.observer.ObserveCounts(counts)
	return s.finish(summary)
}

// processFile runs extract -> check -> load -> preprocess -> persist for one file.
func (s *IngestionService) processFile(ctx context.Context, runID string, config egresos.IngestConfig, f egresos.SourceFile) egresos.FileResult {
	res := egresos.FileResult{File: f}
	s.logger.Info("--- Processing file: %s ---", f.Name)
	if !f.ModifiedAt.IsZero() {
		s.logger.Verbose("%s: %d bytes, modified %s", f.Name, f.SizeBytes, f.ModifiedAt.UTC().Format(time.RFC3339))
	}

	if f.YearErr != nil {
		s.logger.Error("Could not extract year from %s, skipping this file: %v", f.Name, f.YearErr)
		res.Outcome, res.Err = egresos.OutcomeNoYear, f.YearErr
		return res
	}

	bounds := metadata.YearRange{Min: config.MinYear, Max: config.MaxYear}
	if err := bounds.ValidateYear(f.Path, f.Year); err != nil {
		s.logger.Warn("Skipping %s: %v", f.Name, err)
		res.Outcome, res.Err = egresos.OutcomeOutOfRange, err
		return res
	}

	year := f.Year
	if s.store.YearExists(ctx, config.Table, &year) {
		s.logger.Info("Data for year %d from '%s' already exists in the database, skipping.", year, f.Name)
		res.Outcome = egresos.OutcomeAlreadyLoaded
		return res
	}
	s.logger.Info("Data for year %d from '%s' not found, loading and processing.", year, f.Name)

	loaded := s.loader.Load(f.Path)
	res.Checksum = loaded.Checksum
	if loaded.Table.Empty() {
		s.logger.Warn("Failed to load data from '%s', skipping preprocessing and save.", f.Name)
		res.Outcome = egresos.OutcomeLoadFailed
		return res
	}
	res.RowsRead = loaded.Table.Len()
	s.logger.Info("%d rows loaded. Original columns: %v", res.RowsRead, loaded.Table.Names())

	cleaned := s.preprocessor.Process(loaded.Table)
	res.RowsDropped = cleaned.RowsDropped
	s.logger.Info("Data preprocessed: %d rows. Columns after processing: %v", cleaned.Table.Len(), cleaned.Table.Names())
	if cleaned.Table.Empty() {
		s.logger.Warn("Processed data for '%s' is empty, not saving to the database.", f.Name)
		res.Outcome = egresos.OutcomeEmpty
		return res
	}

	entry := &egresos.ManifestEntry{
		FileName:    f.Name,
		Year:        year,
		Checksum:    loaded.Checksum,
		RowCount:    cleaned.Table.Len(),
		DroppedRows: cleaned.RowsDropped,
		RunID:       runID,
		LoadedAt:    s.now(),
	}
	if err := s.store.Append(ctx, config.Table, cleaned.Table, entry); err != nil {
		s.logger.Error("Failed to save data to table '%s': %v", config.Table, err)
		res.Outcome, res.Err = egresos.OutcomePersistFailed, fmt.Errorf("persist %s: %w", f.Name, err)
		return res
	}

	res.RowsLoaded = cleaned.Table.Len()
	res.Outcome = egresos.OutcomeLoaded
	s.logger.Info("Data loaded successfully into table '%s'.", config.Table)
	return res
}
