package model

import "time"

// Metadata keys written by the engine.
const (
	MetaTicker     = "ticker"
	MetaInterval   = "interval"
	MetaStrategy   = "strategy"
	MetaOutputPath = "output_path"
	MetaBars       = "bars"
)

// AnalysisResult is the output of one successful pipeline run.
type AnalysisResult struct {
	Bars       *BarSeries
	Indicators map[string]*IndicatorSeries
	// Order holds indicator names in configuration order.
	Order     []string
	Signals   []Signal
	Metadata  map[string]any
	CreatedAt time.Time
}

// Counts returns the number of BUY and SELL signals.
func (r *AnalysisResult) Counts() (buys, sells int) {
	for _, s := range r.Signals {
		switch s.Type {
		case SignalBuy:
			buys++
		case SignalSell:
			sells++
		}
	}
	return buys, sells
}
