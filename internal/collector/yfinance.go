package collector

import (
	"context"
	"time"

	"TrendScope/internal/errs"
	"TrendScope/internal/model"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"
)

var yfinanceIntervals = map[string]bool{
	"1m": true, "2m": true, "5m": true, "15m": true, "30m": true, "60m": true, "90m": true,
	"1h": true, "1d": true, "5d": true, "1wk": true, "1mo": true, "3mo": true,
}

// ChartIter is the subset of the finance-go chart iterator used here.
type ChartIter interface {
	Next() bool
	Bar() *ChartBar
	Err() error
}

// ChartBar mirrors one finance-go chart bar.
type ChartBar struct {
	Timestamp int
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    int
}

// ChartFunc opens a chart iterator for the given parameters.
type ChartFunc func(params *chart.Params) ChartIter

// YFinanceFetcher implements Fetcher with the finance-go Yahoo client.
type YFinanceFetcher struct {
	Lookback time.Duration
	chart    ChartFunc
	now      func() time.Time
}

// NewYFinanceFetcher creates a fetcher backed by finance-go.
func NewYFinanceFetcher(lookback time.Duration) *YFinanceFetcher {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	return &YFinanceFetcher{Lookback: lookback, chart: financeChart, now: time.Now}
}

func (f *YFinanceFetcher) Name() string { return KeyYFinance }

// Fetch iterates the chart bars between spec.Start and spec.End.
func (f *YFinanceFetcher) Fetch(ctx context.Context, spec model.FetchSpec) (*model.BarSeries, error) {
	start, end, err := window(spec, f.now(), f.Lookback)
	if err != nil {
		return nil, errs.DataFetch(f.Name(), err, "invalid date range")
	}
	interval := spec.Interval
	if interval == "" {
		interval = model.DefaultInterval
	}
	if !yfinanceIntervals[interval] {
		return nil, errs.DataFetch(f.Name(), nil, "unsupported interval %q", interval)
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.DataFetch(f.Name(), err, "fetch cancelled")
	}

	iter := f.chart(&chart.Params{
		Symbol:   spec.Ticker,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.Interval(interval),
	})

	var rows []model.OHLCV
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, errs.DataFetch(f.Name(), err, "fetch cancelled")
		}
		b := iter.Bar()
		rows = append(rows, model.OHLCV{
			Time:   time.Unix(int64(b.Timestamp), 0).UTC(),
			Open:   decimalFloat(b.Open),
			High:   decimalFloat(b.High),
			Low:    decimalFloat(b.Low),
			Close:  decimalFloat(b.Close),
			Volume: float64(b.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, errs.DataFetch(f.Name(), err, "failed to get historical data for %s", spec.Ticker)
	}
	if len(rows) == 0 {
		return nil, errs.DataFetch(f.Name(), nil, "no data returned for %s", spec.Ticker)
	}

	bars, err := model.NewBarSeries(spec.Ticker, interval, rows)
	if err != nil {
		return nil, errs.DataFetch(f.Name(), err, "build series for %s", spec.Ticker)
	}
	return bars, nil
}

func decimalFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

type financeIter struct {
	it *chart.Iter
}

func financeChart(params *chart.Params) ChartIter {
	return &financeIter{it: chart.Get(params)}
}

func (f *financeIter) Next() bool { return f.it.Next() }
func (f *financeIter) Err() error { return f.it.Err() }

func (f *financeIter) Bar() *ChartBar {
	b := f.it.Bar()
	return &ChartBar{
		Timestamp: b.Timestamp,
		Open:      b.Open,
		High:      b.High,
		Low:       b.Low,
		Close:     b.Close,
		Volume:    b.Volume,
	}
}
