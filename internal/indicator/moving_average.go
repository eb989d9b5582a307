package indicator

import (
	"fmt"

	"TrendScope/internal/calculator"
	"TrendScope/internal/config"
	"TrendScope/internal/errs"
	"TrendScope/internal/model"
)

// SMA is the simple moving average of Close.
type SMA struct {
	Period int
}

// NewSMA builds an SMA from its parameters: period (default 20).
func NewSMA(p *config.Params) (Indicator, error) {
	period, err := periodParam(p, 20)
	if err != nil {
		return nil, err
	}
	return &SMA{Period: period}, nil
}

func (s *SMA) Name() string              { return fmt.Sprintf("SMA_%d", s.Period) }
func (s *SMA) Kind() model.IndicatorKind { return model.KindOverlay }

func (s *SMA) Calculate(bars *model.BarSeries) (*model.IndicatorSeries, error) {
	closes, err := closeColumn(s.Name(), bars)
	if err != nil {
		return nil, err
	}
	values, err := calculator.SMA(closes, s.Period)
	if err != nil {
		return nil, errs.IndicatorCalculation(s.Name(), err, "calculation failed")
	}
	return output(s.Name(), s.Kind(), bars, values), nil
}

// EMA is the exponential moving average of Close.
type EMA struct {
	Period int
}

// NewEMA builds an EMA from its parameters: period (default 20).
func NewEMA(p *config.Params) (Indicator, error) {
	period, err := periodParam(p, 20)
	if err != nil {
		return nil, err
	}
	return &EMA{Period: period}, nil
}

func (e *EMA) Name() string              { return fmt.Sprintf("EMA_%d", e.Period) }
func (e *EMA) Kind() model.IndicatorKind { return model.KindOverlay }

func (e *EMA) Calculate(bars *model.BarSeries) (*model.IndicatorSeries, error) {
	closes, err := closeColumn(e.Name(), bars)
	if err != nil {
		return nil, err
	}
	values, err := calculator.EMA(closes, e.Period)
	if err != nil {
		return nil, errs.IndicatorCalculation(e.Name(), err, "calculation failed")
	}
	return output(e.Name(), e.Kind(), bars, values), nil
}
