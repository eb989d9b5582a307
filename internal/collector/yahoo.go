package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"TrendScope/internal/errs"
	"TrendScope/internal/model"

	"github.com/go-resty/resty/v2"
)

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	client    *resty.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
	Lookback  time.Duration
	now       func() time.Time
}

// YahooOptions configures NewYahooFetcher.
type YahooOptions struct {
	BaseURL  string
	Proxy    string
	Lookback time.Duration
	Timeout  time.Duration
}

// NewYahooFetcher creates a new Yahoo Finance fetcher with optional proxy support.
func NewYahooFetcher(opts YahooOptions) *YahooFetcher {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://query1.finance.yahoo.com"
	}
	if opts.Lookback <= 0 {
		opts.Lookback = DefaultLookback
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("User-Agent", "Mozilla/5.0")
	if opts.Proxy != "" {
		client.SetProxy(opts.Proxy)
	}
	return &YahooFetcher{
		client: client,
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
		Lookback: opts.Lookback,
		now:      time.Now,
	}
}

func (f *YahooFetcher) Name() string { return KeyYahoo }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
// Null prices (holidays, halted sessions) decode as nil.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch downloads bars between spec.Start and spec.End (exclusive).
func (f *YahooFetcher) Fetch(ctx context.Context, spec model.FetchSpec) (*model.BarSeries, error) {
	start, end, err := window(spec, f.now(), f.Lookback)
	if err != nil {
		return nil, errs.DataFetch(f.Name(), err, "invalid date range")
	}
	interval := spec.Interval
	if interval == "" {
		interval = model.DefaultInterval
	}

	resp, err := f.client.R().
		SetContext(ctx).
		SetPathParam("symbol", f.yahooSymbol(spec.Ticker)).
		SetQueryParams(map[string]string{
			"interval": interval,
			"period1":  strconv.FormatInt(start.Unix(), 10),
			"period2":  strconv.FormatInt(end.Unix(), 10),
		}).
		Get("/v8/finance/chart/{symbol}")
	if err != nil {
		return nil, errs.DataFetch(f.Name(), err, "request chart for %s", spec.Ticker)
	}
	if resp.IsError() {
		return nil, errs.DataFetch(f.Name(), nil, "status %d, body: %s", resp.StatusCode(), resp.String())
	}

	rows, err := parseChart(resp.Body())
	if err != nil {
		return nil, errs.DataFetch(f.Name(), err, "parse chart for %s", spec.Ticker)
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

func parseChart(body []byte) ([]model.OHLCV, error) {
	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	at := func(col []*float64, i int) (float64, bool) {
		if i >= len(col) || col[i] == nil {
			return 0, false
		}
		return *col[i], true
	}

	rows := make([]model.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o, ok1 := at(quote.Open, i)
		h, ok2 := at(quote.High, i)
		l, ok3 := at(quote.Low, i)
		c, ok4 := at(quote.Close, i)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			continue // skip null bars (holidays etc.)
		}
		v, _ := at(quote.Volume, i)
		rows = append(rows, model.OHLCV{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: v,
		})
	}
	return rows, nil
}
