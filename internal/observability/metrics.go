package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// contract-enforcement pipeline.
type Metrics struct {
	StageRuns          *prometheus.CounterVec   // labels: stage, status
	ContractViolations *prometheus.CounterVec   // labels: stage, direction={input,output}
	StageDuration      *prometheus.HistogramVec // labels: stage
	RowsIn             *prometheus.CounterVec   // labels: stage
	RowsOut            *prometheus.CounterVec   // labels: stage
	PipelineRunning    prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.StageRuns,
		m.ContractViolations,
		m.StageDuration,
		m.RowsIn,
		m.RowsOut,
		m.PipelineRunning,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		StageRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_pipeline",
			Name:      "stage_runs_total",
			Help:      "Stage executions by stage and terminal status.",
		}, []string{"stage", "status"}),
		ContractViolations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_pipeline",
			Name:      "contract_violations_total",
			Help:      "Schema violations detected at stage boundaries, by side.",
		}, []string{"stage", "direction"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weather_pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of a complete stage run including validation and persistence.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
		RowsIn: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_pipeline",
			Name:      "rows_in_total",
			Help:      "Rows loaded as stage input.",
		}, []string{"stage"}),
		RowsOut: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_pipeline",
			Name:      "rows_out_total",
			Help:      "Rows persisted as stage output.",
		}, []string{"stage"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_pipeline",
			Name:      "running",
			Help:      "1 while a pipeline run is in flight, 0 otherwise.",
		}),
	}
}
