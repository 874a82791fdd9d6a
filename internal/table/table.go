// Package table holds an in-memory batch of rows read from one extract.
//
// Columns are ordered and named. Cells hold nil (missing), string (raw
// text), int64 (coerced integer) or float64. A Table is not safe for
// concurrent mutation.
package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the storage type of a column.
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindReal
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "INTEGER"
	case KindReal:
		return "REAL"
	default:
		return "TEXT"
	}
}

// Column is a named, typed column.
type Column struct {
	Name string
	Kind Kind
}

// Table is an ordered set of columns and rows.
type Table struct {
	Columns []Column
	Rows    [][]any
}

// New creates an empty text table with the given column names.
func New(names ...string) *Table {
	cols := make([]Column, len(names))
	for i, n := range names {
		cols[i] = Column{Name: n, Kind: KindText}
	}
	return &Table{Columns: cols}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// Names returns column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Append adds a row. Short rows are padded with nil; long rows are an error.
func (t *Table) Append(row []any) error {
	switch {
	case len(row) > len(t.Columns):
		return fmt.Errorf("row has %d fields, table has %d columns", len(row), len(t.Columns))
	case len(row) < len(t.Columns):
		padded := make([]any, len(t.Columns))
		copy(padded, row)
		row = padded
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// Filter keeps the rows for which keep returns true and reports how many were removed.
func (t *Table) Filter(keep func(row []any) bool) int {
	kept := t.Rows[:0]
	for _, row := range t.Rows {
		if keep(row) {
			kept = append(kept, row)
		}
	}
	dropped := len(t.Rows) - len(kept)
	for i := len(kept); i < len(t.Rows); i++ {
		t.Rows[i] = nil
	}
	t.Rows = kept
	return dropped
}

// Rename applies mapping to the columns that exist and returns the renamed source names.
// Columns absent from mapping, and mapping keys absent from the table, are left alone.
func (t *Table) Rename(mapping map[string]string) []string {
	var renamed []string
	for i, c := range t.Columns {
		target, ok := mapping[c.Name]
		if !ok || target == c.Name {
			continue
		}
		t.Columns[i].Name = target
		renamed = append(renamed, c.Name)
	}
	return renamed
}

// InferKind derives a storage kind from the non-nil cells of column i.
// Columns already typed as integer or real keep their kind.
func (t *Table) InferKind(i int) Kind {
	if k := t.Columns[i].Kind; k != KindText {
		return k
	}
	kind := KindInteger
	seen := false
	for _, row := range t.Rows {
		switch v := row[i].(type) {
		case nil:
			continue
		case int64:
			seen = true
		case float64:
			seen = true
			kind = KindReal
		case string:
			seen = true
			s := strings.TrimSpace(v)
			if _, err := strconv.ParseInt(s, 10, 64); err == nil {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
				kind = KindReal
				continue
			}
			return KindText
		default:
			return KindText
		}
	}
	if !seen {
		return KindText
	}
	return kind
}

// Convert returns v in the Go representation of kind, or nil when it is missing.
func Convert(v any, kind Kind) any {
	switch kind {
	case KindInteger:
		switch x := v.(type) {
		case int64:
			return x
		case float64:
			return int64(x)
		case string:
			if n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64); err == nil {
				return n
			}
		}
	case KindReal:
		switch x := v.(type) {
		case int64:
			return float64(x)
		case float64:
			return x
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
				return f
			}
		}
	default:
		switch x := v.(type) {
		case string:
			return x
		case int64:
			return strconv.FormatInt(x, 10)
		case float64:
			return strconv.FormatFloat(x, 'f', -1, 64)
		}
	}
	return nil
}
