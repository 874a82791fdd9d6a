// Package metrics counts what an ingestion run did and can write the result
// as a node_exporter textfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vvka-141/egresos/pkg/egresos"
)

const namespace = "egresos"

// Recorder holds the run metrics in a private registry.
type Recorder struct {
	registry    *prometheus.Registry
	files       *prometheus.CounterVec
	rowsLoaded  prometheus.Counter
	rowsDropped prometheus.Counter
	lastRun     prometheus.Gauge
	duration    prometheus.Gauge
	yearRows    *prometheus.GaugeVec
}

// NewRecorder creates a Recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Source files seen by the ingester, by outcome.",
		}, []string{"outcome"}),
		rowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_loaded_total",
			Help:      "Rows appended to the destination table.",
		}),
		rowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Rows dropped for exceeding the sentinel threshold in committed files.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last ingestion run finished.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the last ingestion run.",
		}),
		yearRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "table_rows",
			Help:      "Rows per discharge year in the destination table after the run.",
		}, []string{"year"}),
	}
	r.registry.MustRegister(r.files, r.rowsLoaded, r.rowsDropped, r.lastRun, r.duration, r.yearRows)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveFile records one file result.
func (r *Recorder) ObserveFile(res egresos.FileResult) {
	r.files.WithLabelValues(string(res.Outcome)).Inc()
	if res.Outcome == egresos.OutcomeLoaded {
		r.rowsLoaded.Add(float64(res.RowsLoaded))
		r.rowsDropped.Add(float64(res.RowsDropped))
	}
}

// ObserveRun records the end of a run.
func (r *Recorder) ObserveRun(s egresos.RunSummary, finished time.Time) {
	r.lastRun.Set(float64(finished.Unix()))
	r.duration.Set(s.Elapsed.Seconds())
}

// ObserveCounts records the validator's per-year counts.
func (r *Recorder) ObserveCounts(counts []egresos.YearCount) {
	r.yearRows.Reset()
	for _, c := range counts {
		year := "unknown"
		if c.Year.Valid {
			year = fmt.Sprint(c.Year.Int64)
		}
		r.yearRows.WithLabelValues(year).Set(float64(c.Count))
	}
}

// WriteTextfile atomically writes the metrics in text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
