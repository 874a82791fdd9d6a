package services

import (
	"context"
	"time"

	"github.com/vvka-141/egresos/internal/csvload"
	"github.com/vvka-141/egresos/internal/preprocessor"
	"github.com/vvka-141/egresos/internal/table"
	"github.com/vvka-141/egresos/pkg/egresos"
)

type mockScanner struct {
	result egresos.ScanResult
	err    error
}

func (m *mockScanner) ScanDirectory(_ string) (egresos.ScanResult, error) {
	return m.result, m.err
}

type mockLoader struct {
	results map[string]csvload.Result
	calls   []string
}

func (m *mockLoader) Load(path string) csvload.Result {
	m.calls = append(m.calls, path)
	if res, ok := m.results[path]; ok {
		return res
	}
	return csvload.Result{Table: table.New()}
}

// mockPreprocessor drops the first dropRows rows and leaves the rest untouched.
type mockPreprocessor struct {
	dropRows int
	calls    int
}

func (m *mockPreprocessor) Process(t *table.Table) preprocessor.Result {
	m.calls++
	res := preprocessor.Result{Table: t, RowsIn: t.Len()}
	n := m.dropRows
	if n > t.Len() {
		n = t.Len()
	}
	t.Rows = t.Rows[n:]
	res.RowsDropped = n
	return res
}

type mockStore struct {
	existing    map[int]bool
	appendErr   error
	yearQueries []int
	appended    []egresos.ManifestEntry
}

func (m *mockStore) YearExists(_ context.Context, _ string, year *int) bool {
	m.yearQueries = append(m.yearQueries, *year)
	return m.existing[*year]
}

func (m *mockStore) Append(_ context.Context, _ string, _ *table.Table, entry *egresos.ManifestEntry) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.appended = append(m.appended, *entry)
	return nil
}

type mockValidator struct {
	counts []egresos.YearCount
	tables []string
}

func (m *mockValidator) Validate(_ context.Context, table string) []egresos.YearCount {
	m.tables = append(m.tables, table)
	return m.counts
}

type recordingObserver struct {
	files  []egresos.FileResult
	runs   []egresos.RunSummary
	counts [][]egresos.YearCount
}

func (r *recordingObserver) ObserveFile(res egresos.FileResult) {
	r.files = append(r.files, res)
}

func (r *recordingObserver) ObserveRun(s egresos.RunSummary, _ time.Time) {
	r.runs = append(r.runs, s)
}

func (r *recordingObserver) ObserveCounts(counts []egresos.YearCount) {
	r.counts = append(r.counts, counts)
}
