package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservers(t *testing.T) {
	m := New()
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)
	m.ObserveRun("ok")
	m.ObserveBars(120)
	m.ObserveSignal("BUY")
	m.ObserveStage("fetch", 50*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("ok")))
	assert.Equal(t, 120.0, testutil.ToFloat64(m.BarsFetched))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SignalsTotal.WithLabelValues("BUY")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.StageDuration))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveCache(true)
		m.ObserveRun("ok")
		m.ObserveStage("render", time.Second)
		m.ObserveBars(1)
		m.ObserveSignal("SELL")
	})
}

func TestWriteFile(t *testing.T) {
	m := New()
	m.ObserveRun("data_fetch")
	path := filepath.Join(t.TempDir(), "prom", "trendscope.prom")
	require.NoError(t, m.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `trendscope_runs_total{outcome="data_fetch"} 1`)
}
