package plugins

import (
	"context"
	"testing"

	"TrendScope/internal/collector"
	"TrendScope/internal/config"
	"TrendScope/internal/model"
	"TrendScope/internal/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_AllBuiltins(t *testing.T) {
	reg := registry.New()
	Register(reg, Deps{})

	assert.Equal(t, []string{"EMA", "RANGE", "RSI", "SMA"}, reg.Indicators.Keys())
	assert.Equal(t, []string{"crossover", "rsi_reversal", "sma_crossover"}, reg.Strategies.Keys())
	assert.Equal(t, []string{"csv", "echarts", "report"}, reg.Visualizers.Keys())
	assert.Equal(t, []string{"csv", "mock", "rest", "yahoo", "yfinance"}, reg.DataSources.Keys())
}

func TestCrossoverAlias(t *testing.T) {
	reg := registry.New()
	Register(reg, Deps{})

	ctor, err := reg.Strategies.Lookup("crossover")
	require.NoError(t, err)
	s, err := ctor(config.NewParams(config.Section{"fast_ma_name": "SMA_5", "slow_ma_name": "SMA_20"}))
	require.NoError(t, err)
	assert.Equal(t, "sma_crossover", s.Name())
}

func TestDataSourceParams(t *testing.T) {
	reg := registry.New()
	Register(reg, Deps{Proxy: "http://proxy:8080"})

	tests := []struct {
		key     string
		params  config.Section
		wantErr string
	}{
		{"yahoo", config.Section{"lookback_days": 30}, ""},
		{"yahoo", config.Section{"lookback_days": 0}, "lookback_days"},
		{"yfinance", nil, ""},
		{"csv", config.Section{"csv_path": "prices.csv"}, ""},
		{"csv", config.Section{"path": "prices.csv"}, "unexpected parameter(s): path"},
		{"rest", config.Section{"base_url": "http://localhost", "api_key": "k"}, ""},
		{"rest", nil, "base_url"},
		{"mock", config.Section{"price": 50, "count": 10}, ""},
		{"mock", config.Section{"price": "cheap"}, "price"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			ctor, err := reg.DataSources.Lookup(tt.key)
			require.NoError(t, err)
			f, err := ctor(config.NewParams(tt.params))
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.key, f.Name())
		})
	}
}

func TestMockSource_Fetches(t *testing.T) {
	reg := registry.New()
	Register(reg, Deps{})
	ctor, err := reg.DataSources.Lookup(collector.KeyMock)
	require.NoError(t, err)
	f, err := ctor(config.NewParams(config.Section{"count": 40}))
	require.NoError(t, err)

	bars, err := f.Fetch(context.Background(), model.FetchSpec{Ticker: "TEST", End: "2024-06-30"})
	require.NoError(t, err)
	assert.Equal(t, 40, bars.Len())
	assert.Equal(t, "2024-06-30", bars.Times[39].Format(model.DateLayout))
}
