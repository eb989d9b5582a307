// Package plugins registers the built-in components. Call Register once at
// startup, before building a pipeline.
package plugins

import (
	"fmt"
	"time"

	"TrendScope/internal/collector"
	"TrendScope/internal/config"
	"TrendScope/internal/indicator"
	"TrendScope/internal/registry"
	"TrendScope/internal/render"
	"TrendScope/internal/strategy"
)

// Deps carries process-wide settings that data sources fall back to when
// their own section leaves them unset.
type Deps struct {
	// Proxy is the HTTP proxy for network sources (config proxy or HTTPS_PROXY).
	Proxy string
}

// Register adds every built-in indicator, strategy, visualizer and data
// source to reg.
func Register(reg *registry.Registry, deps Deps) {
	reg.Indicators.Register(indicator.KeySMA, indicator.NewSMA)
	reg.Indicators.Register(indicator.KeyEMA, indicator.NewEMA)
	reg.Indicators.Register(indicator.KeyRSI, indicator.NewRSI)
	reg.Indicators.Register(indicator.KeyRange, indicator.NewRange)

	reg.Strategies.Register(strategy.KeySMACrossover, strategy.NewCrossover)
	reg.Strategies.Register(strategy.KeyCrossover, strategy.NewCrossover)
	reg.Strategies.Register(strategy.KeyRSIReversal, strategy.NewRSIReversal)

	reg.Visualizers.Register(render.KeyECharts, render.NewECharts)
	reg.Visualizers.Register(render.KeyCSV, render.NewCSV)
	reg.Visualizers.Register(render.KeyReport, render.NewReport)

	reg.DataSources.Register(collector.KeyYahoo, newYahoo(deps))
	reg.DataSources.Register(collector.KeyYFinance, newYFinance)
	reg.DataSources.Register(collector.KeyCSV, newCSV)
	reg.DataSources.Register(collector.KeyREST, newREST(deps))
	reg.DataSources.Register(collector.KeyMock, newMock)
}

func newYahoo(deps Deps) registry.Constructor[collector.Fetcher] {
	return func(p *config.Params) (collector.Fetcher, error) {
		proxy, err := p.String("proxy", deps.Proxy)
		if err != nil {
			return nil, err
		}
		lookback, err := lookbackParam(p)
		if err != nil {
			return nil, err
		}
		baseURL, err := p.String("base_url", "")
		if err != nil {
			return nil, err
		}
		if err := p.Done(); err != nil {
			return nil, err
		}
		return collector.NewYahooFetcher(collector.YahooOptions{
			BaseURL:  baseURL,
			Proxy:    proxy,
			Lookback: lookback,
		}), nil
	}
}

func newYFinance(p *config.Params) (collector.Fetcher, error) {
	lookback, err := lookbackParam(p)
	if err != nil {
		return nil, err
	}
	if err := p.Done(); err != nil {
		return nil, err
	}
	return collector.NewYFinanceFetcher(lookback), nil
}

func newCSV(p *config.Params) (collector.Fetcher, error) {
	path, err := p.String("csv_path", collector.DefaultCSVPath)
	if err != nil {
		return nil, err
	}
	if err := p.Done(); err != nil {
		return nil, err
	}
	return collector.NewCSVFetcher(path), nil
}

func newREST(deps Deps) registry.Constructor[collector.Fetcher] {
	return func(p *config.Params) (collector.Fetcher, error) {
		baseURL, err := p.String("base_url", "")
		if err != nil {
			return nil, err
		}
		if baseURL == "" {
			return nil, fmt.Errorf("parameter %q is required", "base_url")
		}
		apiKey, err := p.String("api_key", "")
		if err != nil {
			return nil, err
		}
		proxy, err := p.String("proxy", deps.Proxy)
		if err != nil {
			return nil, err
		}
		limit, err := p.Int("limit", 300)
		if err != nil {
			return nil, err
		}
		if err := p.Done(); err != nil {
			return nil, err
		}
		return collector.NewRESTFetcher(baseURL, apiKey, proxy, limit), nil
	}
}

func newMock(p *config.Params) (collector.Fetcher, error) {
	price, err := p.Float("price", 100)
	if err != nil {
		return nil, err
	}
	count, err := p.Int("count", 300)
	if err != nil {
		return nil, err
	}
	if err := p.Done(); err != nil {
		return nil, err
	}
	return collector.NewMockFetcher(price, count), nil
}

func lookbackParam(p *config.Params) (time.Duration, error) {
	days, err := p.Int("lookback_days", int(collector.DefaultLookback/(24*time.Hour)))
	if err != nil {
		return 0, err
	}
	if days <= 0 {
		return 0, fmt.Errorf("parameter %q must be positive, got %d", "lookback_days", days)
	}
	return time.Duration(days) * 24 * time.Hour, nil
}
