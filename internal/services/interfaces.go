package services

import (
	"context"
	"time"

	"github.com/vvka-141/egresos/internal/csvload"
	"github.com/vvka-141/egresos/internal/preprocessor"
	"github.com/vvka-141/egresos/internal/table"
	"github.com/vvka-141/egresos/pkg/egresos"
)

// BatchLoader reads one file into a table. Failures yield an empty table.
type BatchLoader interface {
	Load(path string) csvload.Result
}

// BatchPreprocessor cleans a loaded table.
type BatchPreprocessor interface {
	Process(t *table.Table) preprocessor.Result
}

// BatchStore is the destination table as the pipeline sees it.
type BatchStore interface {
	YearExists(ctx context.Context, table string, year *int) bool
	Append(ctx context.Context, table string, t *table.Table, entry *egresos.ManifestEntry) error
}

// ReportValidator prints the final per-year report.
type ReportValidator interface {
	Validate(ctx context.Context, table string) []egresos.YearCount
}

// RunObserver receives run outcomes, typically for metrics.
type RunObserver interface {
	ObserveFile(res egresos.FileResult)
	ObserveRun(s egresos.RunSummary, finished time.Time)
	ObserveCounts(counts []egresos.YearCount)
}

type nopObserver struct{}

func (nopObserver) ObserveFile(egresos.FileResult) {}
func (nopObserver) ObserveRun(egresos.RunSummary, time.Time) {}
func (nopObserver) ObserveCounts([]egresos.YearCount) {}
