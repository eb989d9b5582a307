package render

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"TrendScope/internal/config"
	"TrendScope/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInput(t *testing.T) Input {
	t.Helper()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	closes := []float64{10, 11, 12, 11, 13}
	rows := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		rows[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 500}
	}
	bars, err := model.NewBarSeries("AAPL", "1d", rows)
	require.NoError(t, err)

	nan := math.NaN()
	sma := &model.IndicatorSeries{Name: "SMA_2", Kind: model.KindOverlay, Times: bars.Times,
		Values: []float64{nan, 10.5, 11.5, 11.5, 12}}
	rsi := &model.IndicatorSeries{Name: "RSI_2", Kind: model.KindOscillator, Times: bars.Times,
		Values: []float64{nan, nan, 100, 50, 66.67}}

	return Input{
		Bars:       bars,
		Indicators: map[string]*model.IndicatorSeries{"SMA_2": sma, "RSI_2": rsi},
		Order:      []string{"SMA_2", "RSI_2"},
		Signals: []model.Signal{
			{Time: bars.Times[2], Type: model.SignalBuy, Price: 12, Description: "cross up"},
			{Time: bars.Times[3], Type: model.SignalSell, Price: 11},
		},
	}
}

func TestOrdered_ConfigOrderThenName(t *testing.T) {
	in := Input{
		Indicators: map[string]*model.IndicatorSeries{
			"b": {Name: "b"}, "a": {Name: "a"}, "z": {Name: "z"},
		},
		Order: []string{"z", "missing", "z"},
	}
	var names []string
	for _, s := range in.ordered() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"z", "a", "b"}, names)
}

func TestECharts_WritesHTML(t *testing.T) {
	v, err := NewECharts(config.NewParams(config.Section{"title": "Demo"}))
	require.NoError(t, err)
	assert.Equal(t, KeyECharts, v.Name())

	out := filepath.Join(t.TempDir(), "nested", "chart.html")
	require.NoError(t, v.Render(sampleInput(t), out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	html := string(data)
	assert.Contains(t, html, "Demo")
	assert.Contains(t, html, "SMA_2")
	assert.Contains(t, html, "RSI_2")
	assert.Contains(t, html, "2024-03-01")
}

func TestECharts_RejectsEmptyInput(t *testing.T) {
	v, err := NewECharts(config.NewParams(nil))
	require.NoError(t, err)
	assert.Error(t, v.Render(Input{}, filepath.Join(t.TempDir(), "x.html")))
}

func TestECharts_ZoomToggle(t *testing.T) {
	dir := t.TempDir()
	for _, zoom := range []bool{true, false} {
		v, err := NewECharts(config.NewParams(config.Section{"zoom": zoom}))
		require.NoError(t, err)
		out := filepath.Join(dir, fmt.Sprintf("zoom_%t.html", zoom))
		require.NoError(t, v.Render(sampleInput(t), out))

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, zoom, strings.Contains(string(data), "dataZoom"), "zoom=%t", zoom)
	}

	_, err := NewECharts(config.NewParams(config.Section{"zoom": "yes"}))
	assert.ErrorContains(t, err, "zoom")
}

func TestECharts_UnknownParam(t *testing.T) {
	_, err := NewECharts(config.NewParams(config.Section{"colour": "red"}))
	assert.ErrorContains(t, err, "colour")
}

func TestCSV_WritesTable(t *testing.T) {
	v, err := NewCSV(config.NewParams(config.Section{"precision": 2}))
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "table.csv")
	require.NoError(t, v.Render(sampleInput(t), out))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 6)
	assert.Equal(t, []string{"Date", "Open", "High", "Low", "Close", "Volume", "SMA_2", "RSI_2", "Signal"}, records[0])
	assert.Equal(t, "2024-03-01", records[1][0])
	assert.Equal(t, "", records[1][6], "NaN is written empty")
	assert.Equal(t, "10.50", records[2][6])
	assert.Equal(t, "BUY", records[3][8])
	assert.Equal(t, "SELL", records[4][8])
	assert.Equal(t, "", records[5][8])
}

func TestReport_Content(t *testing.T) {
	text := FormatReport(sampleInput(t), 1)
	assert.Contains(t, text, "AAPL (1d) | 2024-03-01 → 2024-03-05, 5 bars")
	assert.Contains(t, text, "Close: 13.00")
	assert.Contains(t, text, "Signals: 2 (BUY 1, SELL 1)")
	assert.Contains(t, text, "SMA_2")
	// capped to the most recent signal
	assert.Contains(t, text, "2024-03-04 SELL")
	assert.NotContains(t, text, "cross up")
}

func TestReport_WritesFile(t *testing.T) {
	v, err := NewReport(config.NewParams(nil))
	require.NoError(t, err)
	out := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, v.Render(sampleInput(t), out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "AAPL"))

	_, err = NewReport(config.NewParams(config.Section{"max_signals": -1}))
	assert.Error(t, err)
}
