// Package report prints the per-year validation report and the ingestion
// manifest, and exports both to a workbook.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/vvka-141/egresos/internal/tui"
	"github.com/vvka-141/egresos/pkg/egresos"
)

// Renderer writes reports to w, either as plain lines or as styled tables.
type Renderer struct {
	w    io.Writer
	mode tui.Mode
}

// NewRenderer creates a Renderer. Use tui.DetectMode(w) to choose mode.
func NewRenderer(w io.Writer, mode tui.Mode) *Renderer {
	return &Renderer{w: w, mode: mode}
}

// FormatYear renders a possibly missing year.
func FormatYear(y egresos.YearCount) string {
	if !y.Year.Valid {
		return "NULL"
	}
	return strconv.FormatInt(y.Year.Int64, 10)
}

// YearCounts prints the record count per year for tableName.
func (r *Renderer) YearCounts(tableName string, counts []egresos.YearCount) {
	title := fmt.Sprintf("--- Database validation: records per year in '%s' ---", tableName)

	if r.mode == tui.ModePlain {
		fmt.Fprintf(r.w, "\n%s\n", title)
		if len(counts) == 0 {
			fmt.Fprintf(r.w, "No records found in table '%s'.\n", tableName)
			return
		}
		for _, c := range counts {
			fmt.Fprintf(r.w, "Year: %s, Records: %d\n", FormatYear(c), c.Count)
		}
		return
	}

	fmt.Fprintln(r.w, tui.TitleStyle.Render(title))
	if len(counts) == 0 {
		fmt.Fprintln(r.w, tui.WarningStyle.Render(fmt.Sprintf("No records found in table '%s'.", tableName)))
		return
	}
	var total int64
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{FormatYear(c), strconv.FormatInt(c.Count, 10)})
		total += c.Count
	}
	rows = append(rows, []string{"Total", strconv.FormatInt(total, 10)})
	fmt.Fprintln(r.w, styledTable([]string{"Year", "Records"}, rows, map[int]bool{1: true}))
}

// Manifest prints committed file loads.
func (r *Renderer) Manifest(entries []egresos.ManifestEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(r.w, "No files have been loaded yet.")
		return
	}

	if r.mode == tui.ModePlain {
		for _, e := range entries {
			fmt.Fprintf(r.w, "%s\tyear=%d\trows=%d\tdropped=%d\tloaded_at=%s\trun=%s\tsha256=%s\n",
				e.FileName, e.Year, e.RowCount, e.DroppedRows, e.LoadedAt.Format("2006-01-02T15:04:05Z07:00"), e.RunID, e.Checksum)
		}
		return
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.FileName,
			strconv.Itoa(e.Year),
			strconv.Itoa(e.RowCount),
			strconv.Itoa(e.DroppedRows),
			e.LoadedAt.Local().Format("2006-01-02 15:04"),
			shortChecksum(e.Checksum),
		})
	}
	fmt.Fprintln(r.w, styledTable(
		[]string{"File", "Year", "Rows", "Dropped", "Loaded", "SHA-256"},
		rows, map[int]bool{1: true, 2: true, 3: true}))
}

func shortChecksum(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	return sum
}

func styledTable(headers []string, rows [][]string, numeric map[int]bool) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tui.BorderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tui.HeaderStyle
			case numeric[col]:
				return tui.NumberCellStyle
			default:
				return tui.CellStyle
			}
		}).
		String()
}
