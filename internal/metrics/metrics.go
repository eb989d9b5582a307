// Package metrics holds the Prometheus metrics of a pipeline run.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the analysis pipeline.
type Metrics struct {
	Registry *prometheus.Registry

	StageDuration *prometheus.HistogramVec // labels: stage
	RunsTotal     *prometheus.CounterVec   // labels: outcome
	CacheLookups  *prometheus.CounterVec   // labels: result=hit|miss
	BarsFetched   prometheus.Gauge
	SignalsTotal  *prometheus.CounterVec // labels: type
}

// New registers and returns all metrics on a private registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trendscope_stage_duration_seconds",
			Help:    "Duration of each pipeline stage",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendscope_runs_total",
			Help: "Pipeline runs by outcome (ok or the error kind)",
		}, []string{"outcome"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendscope_cache_lookups_total",
			Help: "Cache lookups by result",
		}, []string{"result"}),
		BarsFetched: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trendscope_bars_fetched",
			Help: "Number of bars returned by the data source in the last run",
		}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendscope_signals_total",
			Help: "Signals generated by type",
		}, []string{"type"}),
	}
	m.Registry.MustRegister(m.StageDuration, m.RunsTotal, m.CacheLookups, m.BarsFetched, m.SignalsTotal)
	return m
}

// ObserveStage records how long a stage took. Safe on a nil receiver.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveRun counts a finished run.
func (m *Metrics) ObserveRun(outcome string) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(outcome).Inc()
}

// ObserveCache implements cache.Observer.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// ObserveBars records the size of the fetched series.
func (m *Metrics) ObserveBars(n int) {
	if m == nil {
		return
	}
	m.BarsFetched.Set(float64(n))
}

// ObserveSignal counts one generated signal.
func (m *Metrics) ObserveSignal(signalType string) {
	if m == nil {
		return
	}
	m.SignalsTotal.WithLabelValues(signalType).Inc()
}

// WriteFile exports the registry in the Prometheus text format, for the
// node_exporter textfile collector.
func (m *Metrics) WriteFile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create metrics dir: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
