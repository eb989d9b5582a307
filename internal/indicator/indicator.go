// Package indicator turns bar series into named indicator outputs.
package indicator

import (
	"fmt"

	"TrendScope/internal/config"
	"TrendScope/internal/errs"
	"TrendScope/internal/model"
)

// Indicator computes one series from the bars.
type Indicator interface {
	// Name is the display name, e.g. "SMA_20".
	Name() string
	Kind() model.IndicatorKind
	Calculate(bars *model.BarSeries) (*model.IndicatorSeries, error)
}

// Registry keys of the built-in indicators.
const (
	KeySMA   = "SMA"
	KeyEMA   = "EMA"
	KeyRSI   = "RSI"
	KeyRange = "RANGE"
)

func periodParam(p *config.Params, def int) (int, error) {
	period, err := p.Int("period", def)
	if err != nil {
		return 0, err
	}
	if period <= 0 {
		return 0, fmt.Errorf("period must be a positive integer, got %d", period)
	}
	if err := p.Done(); err != nil {
		return 0, err
	}
	return period, nil
}

func closeColumn(name string, bars *model.BarSeries) ([]float64, error) {
	closes, err := bars.Column(model.ColClose)
	if err != nil {
		return nil, errs.IndicatorCalculation(name, err, "input data is missing the Close column")
	}
	return closes, nil
}

func output(name string, kind model.IndicatorKind, bars *model.BarSeries, values []float64) *model.IndicatorSeries {
	return &model.IndicatorSeries{Name: name, Kind: kind, Times: bars.Times, Values: values}
}
