package factory

import (
	"testing"

	"TrendScope/internal/cache"
	"TrendScope/internal/collector"
	"TrendScope/internal/config"
	"TrendScope/internal/errs"
	"TrendScope/internal/model"
	"TrendScope/internal/plugins"
	"TrendScope/internal/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func builtins() *registry.Registry {
	reg := registry.New()
	plugins.Register(reg, plugins.Deps{})
	return reg
}

func parse(t *testing.T, doc string) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(doc))
	require.NoError(t, err)
	return cfg
}

const fullConfig = `
data_source:
  type: mock
  ticker: AAPL
  start_date: "2024-01-01"
  end_date: "2024-06-30"
  count: 50
indicators:
  - name: SMA
    period: 10
  - period: 99
  - name: RSI
strategy:
  name: sma_crossover
  fast_ma_name: SMA_10
  slow_ma_name: SMA_50
visualizer:
  name: csv
  output_path: out/table.csv
`

func TestNew_MissingSections(t *testing.T) {
	tests := []struct {
		doc     string
		section string
	}{
		{"indicators: []\nvisualizer: {name: csv}\n", "data_source"},
		{"data_source: {type: mock}\nvisualizer: {name: csv}\n", "indicators"},
		{"data_source: {type: mock}\nindicators: []\n", "visualizer"},
		{"", "data_source"},
	}
	for _, tt := range tests {
		_, err := New(parse(t, tt.doc), builtins())
		e, ok := errs.As(err)
		require.True(t, ok)
		assert.Equal(t, errs.KindConfiguration, e.Kind)
		assert.Equal(t, tt.section, e.Component)
	}
}

func TestBuild_FullConfig(t *testing.T) {
	f, err := New(parse(t, fullConfig), builtins())
	require.NoError(t, err)

	plan, err := f.Build()
	require.NoError(t, err)

	assert.Equal(t, model.FetchSpec{Ticker: "AAPL", Interval: "1d", Start: "2024-01-01", End: "2024-06-30"}, plan.Spec)
	assert.Equal(t, "out/table.csv", plan.OutputPath)
	assert.Equal(t, "mock", plan.Components.Source.Name())
	require.Len(t, plan.Components.Indicators, 2, "entry without name is skipped")
	assert.Equal(t, "SMA_10", plan.Components.Indicators[0].Name())
	assert.Equal(t, "RSI_14", plan.Components.Indicators[1].Name())
	assert.Equal(t, "sma_crossover", plan.Components.Strategy.Name())
	assert.Equal(t, "csv", plan.Components.Visualizer.Name())
}

func TestBuildFetchSpec(t *testing.T) {
	f, err := New(parse(t, "data_source: {type: mock}\nindicators: []\nvisualizer: {name: csv}\n"), builtins())
	require.NoError(t, err)
	_, err = f.BuildFetchSpec()
	assert.True(t, errs.Is(err, errs.KindConfiguration))

	f, err = New(parse(t, "data_source: {type: mock, ticker: X, start_date: 2024-13-01}\nindicators: []\nvisualizer: {name: csv}\n"), builtins())
	require.NoError(t, err)
	_, err = f.BuildFetchSpec()
	assert.True(t, errs.Is(err, errs.KindConfiguration))
}

func TestBuildDataSource_Errors(t *testing.T) {
	tests := []struct {
		name string
		ds   string
		kind errs.Kind
	}{
		{"missing type", "{ticker: X}", errs.KindConfiguration},
		{"unregistered", "{type: bloomberg, ticker: X}", errs.KindFactory},
		{"unknown param", "{type: mock, ticker: X, colour: red}", errs.KindFactory},
		{"wrong type", "{type: mock, ticker: X, count: many}", errs.KindFactory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(parse(t, "data_source: "+tt.ds+"\nindicators: []\nvisualizer: {name: csv}\n"), builtins())
			require.NoError(t, err)
			_, err = f.BuildDataSource()
			assert.Equal(t, tt.kind, errs.KindOf(err), "%v", err)
		})
	}
}

func TestBuildDataSource_UnregisteredKeepsCause(t *testing.T) {
	f, err := New(parse(t, "data_source: {type: bloomberg}\nindicators: []\nvisualizer: {name: csv}\n"), builtins())
	require.NoError(t, err)
	_, err = f.BuildDataSource()
	assert.ErrorIs(t, err, registry.ErrNotRegistered)
	e, _ := errs.As(err)
	assert.Equal(t, "bloomberg", e.Component)
}

func TestBuildDataSource_WithCache(t *testing.T) {
	c := cache.New(cache.NewMemoryStore(), 0)
	cfg := parse(t, "data_source: {type: mock, ticker: X, count: 30}\nindicators: []\nvisualizer: {name: csv}\n")
	f, err := New(cfg, builtins(), WithCache(c, false))
	require.NoError(t, err)

	src, err := f.BuildDataSource()
	require.NoError(t, err)
	_, ok := src.(*collector.CachedFetcher)
	assert.True(t, ok)
	assert.Equal(t, "mock", src.Name())
}

func TestBuildIndicators_Errors(t *testing.T) {
	tests := []struct {
		name      string
		entries   string
		component string
	}{
		{"unregistered", "[{name: MACD}]", "MACD"},
		{"bad period", "[{name: SMA, period: -1}]", "SMA"},
		{"unknown param", "[{name: RSI, window: 3}]", "RSI"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(parse(t, "data_source: {type: mock}\nindicators: "+tt.entries+"\nvisualizer: {name: csv}\n"), builtins())
			require.NoError(t, err)
			_, err = f.BuildIndicators()
			e, ok := errs.As(err)
			require.True(t, ok)
			assert.Equal(t, errs.KindFactory, e.Kind)
			assert.Equal(t, tt.component, e.Component)
		})
	}
}

func TestBuildStrategy(t *testing.T) {
	base := "data_source: {type: mock}\nindicators: []\nvisualizer: {name: csv}\n"

	f, err := New(parse(t, base), builtins())
	require.NoError(t, err)
	s, err := f.BuildStrategy()
	assert.NoError(t, err)
	assert.Nil(t, s)

	f, err = New(parse(t, base+"strategy: {fast_ma_name: SMA_5}\n"), builtins())
	require.NoError(t, err)
	_, err = f.BuildStrategy()
	assert.True(t, errs.Is(err, errs.KindConfiguration))

	f, err = New(parse(t, base+"strategy: {name: martingale}\n"), builtins())
	require.NoError(t, err)
	_, err = f.BuildStrategy()
	assert.True(t, errs.Is(err, errs.KindFactory))

	f, err = New(parse(t, base+"strategy: {name: rsi_reversal, oversold: 80, overbought: 20}\n"), builtins())
	require.NoError(t, err)
	_, err = f.BuildStrategy()
	assert.True(t, errs.Is(err, errs.KindFactory))
}

func TestBuildVisualizer(t *testing.T) {
	f, err := New(parse(t, "data_source: {type: mock}\nindicators: []\nvisualizer: {output_path: x.html}\n"), builtins())
	require.NoError(t, err)
	_, err = f.BuildVisualizer()
	assert.True(t, errs.Is(err, errs.KindConfiguration))

	f, err = New(parse(t, "data_source: {type: mock}\nindicators: []\nvisualizer: {name: matplotlib}\n"), builtins())
	require.NoError(t, err)
	_, err = f.BuildVisualizer()
	assert.True(t, errs.Is(err, errs.KindFactory))

	f, err = New(parse(t, "data_source: {type: mock}\nindicators: []\nvisualizer: {name: echarts, output_path: x.html, title: T}\n"), builtins())
	require.NoError(t, err)
	v, err := f.BuildVisualizer()
	require.NoError(t, err)
	assert.Equal(t, "echarts", v.Name())
	assert.Equal(t, "x.html", f.OutputPath())
}

func TestOutputPath_Default(t *testing.T) {
	f, err := New(parse(t, "data_source: {type: mock}\nindicators: []\nvisualizer: {name: csv}\n"), builtins())
	require.NoError(t, err)
	assert.Equal(t, DefaultOutputPath, f.OutputPath())
}
