package report

import (
	"context"
	"errors"

	"github.com/vvka-141/egresos/pkg/egresos"
)

// CountSource answers the per-year count query.
type CountSource interface {
	CountsByYear(ctx context.Context, table string) ([]egresos.YearCount, error)
}

// Validator prints the per-year report after a run. It never fails the run.
type Validator struct {
	source   CountSource
	renderer *Renderer
	logger   egresos.Logger
}

// NewValidator creates a Validator. Panics if any dependency is nil.
func NewValidator(source CountSource, renderer *Renderer, logger egresos.Logger) *Validator {
	if source == nil {
		panic("source cannot be nil")
	}
	if renderer == nil {
		panic("renderer cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Validator{source: source, renderer: renderer, logger: logger}
}

// Validate queries and prints counts for tableName. It returns the counts it
// printed, or nil when the table is missing or the query failed.
func (v *Validator) Validate(ctx context.Context, tableName string) []egresos.YearCount {
	counts, err := v.source.CountsByYear(ctx, tableName)
	switch {
	case errors.Is(err, egresos.ErrTableMissing):
		v.logger.Info("Table '%s' does not exist yet, nothing to validate", tableName)
		return nil
	case err != nil:
		v.logger.Error("Database validation failed: %v", err)
		return nil
	}
	v.renderer.YearCounts(tableName, counts)
	return counts
}
