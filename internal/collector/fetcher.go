package collector

import (
	"context"
	"time"

	"TrendScope/internal/model"
)

// Fetcher loads a bar series for a FetchSpec. Failures are reported as
// data-fetch errors.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, spec model.FetchSpec) (*model.BarSeries, error)
}

// Registry keys of the built-in data sources.
const (
	KeyYahoo    = "yahoo"
	KeyYFinance = "yfinance"
	KeyCSV      = "csv"
	KeyREST     = "rest"
	KeyMock     = "mock"
)

// DefaultLookback is the window used by remote sources when no start date is given.
const DefaultLookback = 90 * 24 * time.Hour

// window resolves the spec's dates, defaulting to the trailing lookback up to now.
func window(spec model.FetchSpec, now time.Time, lookback time.Duration) (start, end time.Time, err error) {
	start, end, err = spec.Range()
	if err != nil {
		return start, end, err
	}
	if end.IsZero() {
		end = now
	}
	if start.IsZero() {
		start = end.Add(-lookback)
	}
	return start, end, nil
}

// filterRange keeps rows with start <= time <= end; zero bounds are open.
func filterRange(rows []model.OHLCV, start, end time.Time) []model.OHLCV {
	out := rows[:0:0]
	for _, r := range rows {
		if !start.IsZero() && r.Time.Before(start) {
			continue
		}
		if !end.IsZero() && r.Time.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out
}
