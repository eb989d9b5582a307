package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
data_source:
  type: csv
  ticker: AAPL
  csv_path: data/aapl.csv
indicators:
  - name: SMA
    period: 10
  - name: RSI
strategy:
  name: sma_crossover
  fast_ma_name: SMA_10
visualizer:
  name: echarts
  output_path: out/chart.html
cache:
  backend: sqlite
  ttl: 30m
logging:
  level: debug
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "csv", cfg.DataSource.String("type"))
	assert.Equal(t, "AAPL", cfg.DataSource.String("ticker"))
	require.Len(t, cfg.Indicators, 2)
	assert.Equal(t, 10, cfg.Indicators[0]["period"])
	assert.Equal(t, "sma_crossover", cfg.Strategy.String("name"))
	assert.Equal(t, "out/chart.html", cfg.Visualizer.String("output_path"))
	assert.Equal(t, "sqlite", cfg.Cache.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, DefaultCacheDir, cfg.Cache.Dir)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParse_AbsentSectionsStayNil(t *testing.T) {
	cfg, err := Parse([]byte("visualizer:\n  name: report\n"))
	require.NoError(t, err)
	assert.Nil(t, cfg.DataSource)
	assert.Nil(t, cfg.Indicators)
	assert.Nil(t, cfg.Strategy)
	assert.NotNil(t, cfg.Visualizer)
	assert.Equal(t, DefaultCacheBackend, cfg.Cache.Backend)
	assert.Equal(t, DefaultCacheTTL, cfg.Cache.TTL)
}

func TestParse_EmptyIndicatorListIsPresent(t *testing.T) {
	cfg, err := Parse([]byte("indicators: []\n"))
	require.NoError(t, err)
	assert.NotNil(t, cfg.Indicators)
	assert.Empty(t, cfg.Indicators)
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("TRENDSCOPE_CACHE_BACKEND", "memory")
	cfg, err := Parse([]byte("logging:\n  level: debug\n"))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "memory", cfg.Cache.Backend)
}

func TestApply(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	dropped := cfg.Apply(Overrides{Ticker: "MSFT", Interval: "1wk", Output: "x.html"})
	assert.Empty(t, dropped)
	assert.Equal(t, "MSFT", cfg.DataSource.String("ticker"))
	assert.Equal(t, "1wk", cfg.DataSource.String("interval"))
	assert.Equal(t, "x.html", cfg.Visualizer.String("output_path"))

	empty := &Config{}
	dropped = empty.Apply(Overrides{Ticker: "MSFT", Output: "x.html"})
	assert.Equal(t, []string{"ticker", "output_path"}, dropped)
	assert.Nil(t, empty.DataSource)
	assert.Nil(t, empty.Visualizer)

	assert.Empty(t, empty.Apply(Overrides{}))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad backend", func(c *Config) { c.Cache.Backend = "mongo" }, true},
		{"bad codec", func(c *Config) { c.Cache.Codec = "xml" }, true},
		{"negative ttl", func(c *Config) { c.Cache.TTL = -time.Second }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"half telegram", func(c *Config) { c.Notify.Telegram.BotToken = "t" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse(nil)
			require.NoError(t, err)
			tt.mutate(cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}
