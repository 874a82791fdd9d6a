package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/vvka-141/egresos/pkg/egresos"
)

// Sheet names in exported workbooks.
const (
	SheetCounts   = "Records per year"
	SheetManifest = "Loaded files"
)

// WriteWorkbook saves the per-year counts and the manifest to an .xlsx file.
func WriteWorkbook(path string, counts []egresos.YearCount, manifest []egresos.ManifestEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetCounts); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeRows(f, SheetCounts, []any{"Year", "Records"}, len(counts), func(i int) []any {
		c := counts[i]
		var year any
		if c.Year.Valid {
			year = c.Year.Int64
		}
		return []any{year, c.Count}
	}); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetManifest); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := writeRows(f, SheetManifest,
		[]any{"File", "Year", "Rows", "Dropped rows", "Loaded at", "Run", "SHA-256"},
		len(manifest), func(i int) []any {
			e := manifest[i]
			return []any{e.FileName, e.Year, e.RowCount, e.DroppedRows, e.LoadedAt, e.RunID, e.Checksum}
		}); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, header []any, n int, row func(i int) []any) error {
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := setRow(f, sheet, i+2, row(i)); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return err
		}
		if v == nil {
			continue
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}
