package collector

import (
	"context"
	"math"
	"time"

	"TrendScope/internal/errs"
	"TrendScope/internal/model"
)

// MockFetcher returns controllable synthetic data for development and testing.
// Prices follow a slow sine wave around Price so moving averages cross.
type MockFetcher struct {
	Price float64
	Count int
	// Rows, when set, is returned as is.
	Rows []model.OHLCV
	// Err, when set, is returned by Fetch.
	Err error
	now func() time.Time
}

// NewMockFetcher creates a fetcher producing count daily bars around price.
func NewMockFetcher(price float64, count int) *MockFetcher {
	if price <= 0 {
		price = 100
	}
	if count <= 0 {
		count = 300
	}
	return &MockFetcher{Price: price, Count: count, now: time.Now}
}

func (m *MockFetcher) Name() string { return KeyMock }

// Fetch ends the synthetic series at spec.End, or today when unset.
func (m *MockFetcher) Fetch(ctx context.Context, spec model.FetchSpec) (*model.BarSeries, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.DataFetch(m.Name(), err, "fetch cancelled")
	}
	rows := m.Rows
	if rows == nil {
		_, end, err := spec.Range()
		if err != nil {
			return nil, errs.DataFetch(m.Name(), err, "invalid date range")
		}
		if end.IsZero() {
			now := time.Now
			if m.now != nil {
				now = m.now
			}
			end = now().UTC().Truncate(24 * time.Hour)
		}
		rows = generateMockBars(m.Price, m.Count, end)
	}
	interval := spec.Interval
	if interval == "" {
		interval = model.DefaultInterval
	}
	bars, err := model.NewBarSeries(spec.Ticker, interval, rows)
	if err != nil {
		return nil, errs.DataFetch(m.Name(), err, "build series")
	}
	return bars, nil
}

func generateMockBars(basePrice float64, count int, end time.Time) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001 + 0.08*math.Sin(float64(i)/12))
		bars[i] = model.OHLCV{
			Time:   end.AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
