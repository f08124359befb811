package migrate

import (
	"github.com/prometheus/client_golang/prometheus"
	"pos-migrate/internal/app/model"
)

// Metrics collects per-run counters on a private registry. All methods are
// safe on a nil receiver.
type Metrics struct {
	registry    *prometheus.Registry
	rows        *prometheus.CounterVec
	tables      *prometheus.CounterVec
	conversions *prometheus.CounterVec
	sequences   *prometheus.CounterVec
	duration    *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "posmigrate",
			Name:      "rows_total",
			Help:      "Rows processed per table, by outcome.",
		}, []string{"table", "outcome"}),
		tables: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "posmigrate",
			Name:      "tables_total",
			Help:      "Tables processed, by final status.",
		}, []string{"status"}),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "posmigrate",
			Name:      "timestamp_conversions_total",
			Help:      "Timestamp conversions, by outcome.",
		}, []string{"table", "outcome"}),
		sequences: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "posmigrate",
			Name:      "sequence_resets_total",
			Help:      "Sequence resets, by status.",
		}, []string{"status"}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "posmigrate",
			Name:      "table_duration_seconds",
			Help:      "Wall time spent migrating a table.",
		}, []string{"table"}),
	}
	m.registry.MustRegister(m.rows, m.tables, m.conversions, m.sequences, m.duration)
	return m
}

func (m *Metrics) ObserveTable(r model.TableResult) {
	if m == nil {
		return
	}
	m.tables.WithLabelValues(string(r.Status)).Inc()
	m.rows.WithLabelValues(r.Table, "read").Add(float64(r.RowsRead))
	m.rows.WithLabelValues(r.Table, "inserted").Add(float64(r.RowsInserted))
	m.rows.WithLabelValues(r.Table, "conflicted").Add(float64(r.RowsConflicted))
	m.conversions.WithLabelValues(r.Table, Converted.String()).Add(float64(r.TimestampsFixed))
	m.conversions.WithLabelValues(r.Table, Failed.String()).Add(float64(r.ConversionErrors))
	m.duration.WithLabelValues(r.Table).Set(r.Duration.Seconds())
}

func (m *Metrics) ObserveSequence(r model.SequenceResult) {
	if m == nil {
		return
	}
	m.sequences.WithLabelValues(string(r.Status)).Inc()
}

// Gatherer exposes the registry, mainly for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteToFile writes the metrics in text exposition format, suitable for the
// node_exporter textfile collector.
func (m *Metrics) WriteToFile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
