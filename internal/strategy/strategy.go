// Package strategy derives discrete trading signals from indicator outputs.
package strategy

import (
	"fmt"
	"math"

	"TrendScope/internal/model"
)

// Strategy turns bars plus computed indicators into signals, ordered by bar index.
type Strategy interface {
	Name() string
	GenerateSignals(bars *model.BarSeries, indicators map[string]*model.IndicatorSeries) ([]model.Signal, error)
}

// Registry keys of the built-in strategies.
const (
	KeySMACrossover = "sma_crossover"
	KeyCrossover    = "crossover"
	KeyRSIReversal  = "rsi_reversal"
)

// lookup returns the named indicators, or ok=false when any is absent.
func lookup(indicators map[string]*model.IndicatorSeries, names ...string) ([]*model.IndicatorSeries, bool) {
	out := make([]*model.IndicatorSeries, len(names))
	for i, name := range names {
		s, ok := indicators[name]
		if !ok || s == nil {
			return nil, false
		}
		out[i] = s
	}
	return out, true
}

// aligned checks that every series has one value per bar and returns Close.
func aligned(bars *model.BarSeries, series ...*model.IndicatorSeries) ([]float64, error) {
	closes, err := bars.Column(model.ColClose)
	if err != nil {
		return nil, err
	}
	for _, s := range series {
		if s.Len() != len(closes) {
			return nil, fmt.Errorf("indicator %s has %d values for %d bars", s.Name, s.Len(), len(closes))
		}
	}
	return closes, nil
}

func anyNaN(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
