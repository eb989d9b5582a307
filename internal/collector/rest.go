package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"TrendScope/internal/errs"
	"TrendScope/internal/model"

	"github.com/go-resty/resty/v2"
)

// RESTFetcher implements Fetcher against a JSON bars API exposing
// /api/v1/bars/daily and /api/v1/bars/weekly.
type RESTFetcher struct {
	client *resty.Client
	Limit  int
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string, limit int) *RESTFetcher {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second)
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	if limit <= 0 {
		limit = 300
	}
	return &RESTFetcher{client: client, Limit: limit}
}

func (f *RESTFetcher) Name() string { return KeyREST }

// restBar is the expected JSON shape from the bars API.
type restBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// Fetch supports daily and weekly bars. Start and End filter the returned rows.
func (f *RESTFetcher) Fetch(ctx context.Context, spec model.FetchSpec) (*model.BarSeries, error) {
	start, end, err := spec.Range()
	if err != nil {
		return nil, errs.DataFetch(f.Name(), err, "invalid date range")
	}
	interval := spec.Interval
	if interval == "" {
		interval = model.DefaultInterval
	}

	var rows []model.OHLCV
	switch interval {
	case "1d":
		rows, err = f.fetchBars(ctx, "daily", spec.Ticker, f.Limit)
	case "1wk":
		rows, err = f.fetchWeekly(ctx, spec.Ticker)
	default:
		return nil, errs.DataFetch(f.Name(), nil, "unsupported interval %q", interval)
	}
	if err != nil {
		return nil, errs.DataFetch(f.Name(), err, "fetch %s bars for %s", interval, spec.Ticker)
	}
	if !end.IsZero() {
		end = end.Add(24*time.Hour - time.Nanosecond)
	}
	rows = filterRange(rows, start, end)
	if len(rows) == 0 {
		return nil, errs.DataFetch(f.Name(), nil, "no data returned for %s", spec.Ticker)
	}
	bars, err := model.NewBarSeries(spec.Ticker, interval, rows)
	if err != nil {
		return nil, errs.DataFetch(f.Name(), err, "build series for %s", spec.Ticker)
	}
	return bars, nil
}

func (f *RESTFetcher) fetchWeekly(ctx context.Context, symbol string) ([]model.OHLCV, error) {
	// Try weekly endpoint first; if API only provides daily, aggregate internally.
	weeks := f.Limit/5 + 1
	bars, err := f.fetchBars(ctx, "weekly", symbol, weeks)
	if err != nil {
		dailyBars, dailyErr := f.fetchBars(ctx, "daily", symbol, weeks*7)
		if dailyErr != nil {
			return nil, fmt.Errorf("weekly fetch failed: %w; daily fallback also failed: %w", err, dailyErr)
		}
		return aggregateDailyToWeekly(dailyBars), nil
	}
	return bars, nil
}

func (f *RESTFetcher) fetchBars(ctx context.Context, period, symbol string, limit int) ([]model.OHLCV, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetPathParam("period", period).
		SetQueryParam("symbol", symbol).
		SetQueryParam("limit", fmt.Sprint(limit)).
		Get("/api/v1/bars/{period}")
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode(), resp.String())
	}
	var raw []restBar
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	rows := make([]model.OHLCV, len(raw))
	for i, b := range raw {
		rows[i] = model.OHLCV{
			Time:   time.Unix(b.Timestamp, 0).UTC(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		}
	}
	// Ensure chronological order
	sort.Slice(rows, func(i, j int) bool { return rows[i].Time.Before(rows[j].Time) })
	return rows, nil
}

// aggregateDailyToWeekly converts daily bars into ISO-week bars.
func aggregateDailyToWeekly(daily []model.OHLCV) []model.OHLCV {
	var weekly []model.OHLCV
	for _, d := range daily {
		if n := len(weekly); n > 0 && sameISOWeek(weekly[n-1].Time, d.Time) {
			w := &weekly[n-1]
			w.High = max(w.High, d.High)
			w.Low = min(w.Low, d.Low)
			w.Close = d.Close
			w.Volume += d.Volume
			continue
		}
		weekly = append(weekly, d)
	}
	return weekly
}

func sameISOWeek(a, b time.Time) bool {
	ay, aw := a.ISOWeek()
	by, bw := b.ISOWeek()
	return ay == by && aw == bw
}
