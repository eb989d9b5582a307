package indicator

import (
	"fmt"

	"TrendScope/internal/calculator"
	"TrendScope/internal/config"
	"TrendScope/internal/errs"
	"TrendScope/internal/model"
)

// RSI is the relative strength index of Close, bounded to [0, 100].
type RSI struct {
	Period int
}

// NewRSI builds an RSI from its parameters: period (default 14).
func NewRSI(p *config.Params) (Indicator, error) {
	period, err := periodParam(p, 14)
	if err != nil {
		return nil, err
	}
	return &RSI{Period: period}, nil
}

func (r *RSI) Name() string              { return fmt.Sprintf("RSI_%d", r.Period) }
func (r *RSI) Kind() model.IndicatorKind { return model.KindOscillator }

func (r *RSI) Calculate(bars *model.BarSeries) (*model.IndicatorSeries, error) {
	closes, err := closeColumn(r.Name(), bars)
	if err != nil {
		return nil, err
	}
	values, err := calculator.RSI(closes, r.Period)
	if err != nil {
		return nil, errs.IndicatorCalculation(r.Name(), err, "calculation failed")
	}
	return output(r.Name(), r.Kind(), bars, values), nil
}

// Range is the position of Close within the rolling High/Low range, 0.0~1.0.
type Range struct {
	Period int
}

// NewRange builds a Range from its parameters: period (default 252, one trading year).
func NewRange(p *config.Params) (Indicator, error) {
	period, err := periodParam(p, 252)
	if err != nil {
		return nil, err
	}
	return &Range{Period: period}, nil
}

func (r *Range) Name() string              { return fmt.Sprintf("RANGE_%d", r.Period) }
func (r *Range) Kind() model.IndicatorKind { return model.KindOscillator }

func (r *Range) Calculate(bars *model.BarSeries) (*model.IndicatorSeries, error) {
	closes, err := closeColumn(r.Name(), bars)
	if err != nil {
		return nil, err
	}
	high, err := bars.Column(model.ColHigh)
	if err != nil {
		return nil, errs.IndicatorCalculation(r.Name(), err, "input data is missing the High column")
	}
	low, err := bars.Column(model.ColLow)
	if err != nil {
		return nil, errs.IndicatorCalculation(r.Name(), err, "input data is missing the Low column")
	}
	values, err := calculator.RangePosition(high, low, closes, r.Period)
	if err != nil {
		return nil, errs.IndicatorCalculation(r.Name(), err, "calculation failed")
	}
	return output(r.Name(), r.Kind(), bars, values), nil
}
