// Package preprocessor cleans a freshly loaded batch before it is persisted.
//
// Processing runs three steps in order:
//
//  1. Drop rows in which more than floor(columns * threshold) cells hold the
//     sentinel value. A row exactly at the limit is kept.
//  2. Rename the columns present in the mapping. Unknown columns pass through.
//  3. Coerce the configured integer columns. Values that are missing or not
//     numeric become 0; fractional values are truncated.
package preprocessor

import (
	"math"
	"strconv"
	"strings"

	"github.com/vvka-141/egresos/internal/table"
	"github.com/vvka-141/egresos/pkg/egresos"
)

// Rules configure a Pipeline.
type Rules struct {
	Threshold      float64           // Fraction of sentinel cells tolerated per row
	Sentinel       string            // Placeholder for suppressed values
	ColumnMapping  map[string]string // Source name -> target name
	IntegerColumns []string          // Target names coerced to integers
}

// DefaultRules returns the rules for the public discharge extracts.
func DefaultRules() Rules {
	return Rules{
		Threshold:      egresos.DefaultThreshold,
		Sentinel:       egresos.DefaultSentinel,
		ColumnMapping:  egresos.DefaultColumnMapping(),
		IntegerColumns: egresos.DefaultIntegerColumns(),
	}
}

// Result reports what a Process call changed.
type Result struct {
	Table       *table.Table
	RowsIn      int
	RowsDropped int
	Renamed     []string // Source names that were renamed
	Coerced     []string // Columns converted to integers
	Missing     []string // Integer columns absent from the batch
	Zeroed      int      // Cells replaced by 0 during coercion
}

// Pipeline applies Rules to batches.
type Pipeline struct {
	rules  Rules
	logger egresos.Logger
}

// NewPipeline creates a preprocessing pipeline. Panics if logger is nil.
func NewPipeline(rules Rules, logger egresos.Logger) *Pipeline {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Pipeline{rules: rules, logger: logger}
}

// Process cleans t in place and returns it with a summary.
// An empty batch is returned unchanged with a warning.
func (p *Pipeline) Process(t *table.Table) Result {
	res := Result{Table: t, RowsIn: t.Len()}
	if t.Empty() {
		p.logger.Warn("Received empty batch, skipping preprocessing")
		return res
	}

	res.RowsDropped = p.dropSentinelRows(t)
	if res.RowsDropped > 0 {
		p.logger.Info("Dropped %d of %d rows exceeding the %q threshold", res.RowsDropped, res.RowsIn, p.rules.Sentinel)
	}

	res.Renamed = t.Rename(p.rules.ColumnMapping)
	p.logger.Verbose("Renamed %d columns", len(res.Renamed))

	for _, name := range p.rules.IntegerColumns {
		zeroed, found := coerceColumn(t, name)
		if !found {
			p.logger.Warn("Column %s not found in batch, skipping integer conversion", name)
			res.Missing = append(res.Missing, name)
			continue
		}
		res.Coerced = append(res.Coerced, name)
		res.Zeroed += zeroed
	}
	if res.Zeroed > 0 {
		p.logger.Verbose("Replaced %d non-numeric values with 0", res.Zeroed)
	}

	p.logger.Info("Preprocessing complete: %d rows remain", t.Len())
	return res
}

// SentinelLimit is the largest sentinel count a row may carry and still be kept.
func SentinelLimit(columns int, threshold float64) int {
	return int(math.Floor(float64(columns) * threshold))
}

func (p *Pipeline) dropSentinelRows(t *table.Table) int {
	limit := SentinelLimit(len(t.Columns), p.rules.Threshold)
	sentinel := p.rules.Sentinel
	return t.Filter(func(row []any) bool {
		count := 0
		for _, cell := range row {
			if s, ok := cell.(string); ok && s == sentinel {
				count++
			}
		}
		return count <= limit
	})
}

func coerceColumn(t *table.Table, name string) (zeroed int, found bool) {
	for i, col := range t.Columns {
		if col.Name != name {
			continue
		}
		found = true
		t.Columns[i].Kind = table.KindInteger
		for _, row := range t.Rows {
			n, ok := ToInteger(row[i])
			if !ok {
				zeroed++
			}
			row[i] = n
		}
	}
	return zeroed, found
}

// ToInteger converts a cell to int64. The bool is false when the value was replaced by 0.
func ToInteger(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case float64:
		return truncate(x)
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return truncate(f)
		}
	}
	return 0, false
}

func truncate(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f <= math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}
