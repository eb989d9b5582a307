package strategy

import (
	"fmt"

	"TrendScope/internal/config"
	"TrendScope/internal/model"
)

// RSIReversal buys when RSI climbs back out of the oversold zone and sells
// when it falls back out of the overbought zone.
type RSIReversal struct {
	RSIName    string
	Oversold   float64
	Overbought float64
}

// NewRSIReversal builds an RSIReversal from rsi_name (default RSI_14),
// oversold (default 30) and overbought (default 70).
func NewRSIReversal(p *config.Params) (Strategy, error) {
	name, err := p.String("rsi_name", "RSI_14")
	if err != nil {
		return nil, err
	}
	oversold, err := p.Float("oversold", 30)
	if err != nil {
		return nil, err
	}
	overbought, err := p.Float("overbought", 70)
	if err != nil {
		return nil, err
	}
	if err := p.Done(); err != nil {
		return nil, err
	}
	if oversold < 0 || overbought > 100 || oversold >= overbought {
		return nil, fmt.Errorf("thresholds must satisfy 0 <= oversold < overbought <= 100, got %v and %v", oversold, overbought)
	}
	return &RSIReversal{RSIName: name, Oversold: oversold, Overbought: overbought}, nil
}

func (r *RSIReversal) Name() string { return KeyRSIReversal }

func (r *RSIReversal) GenerateSignals(bars *model.BarSeries, indicators map[string]*model.IndicatorSeries) ([]model.Signal, error) {
	series, ok := lookup(indicators, r.RSIName)
	if !ok {
		return []model.Signal{}, nil
	}
	rsi := series[0]
	closes, err := aligned(bars, rsi)
	if err != nil {
		return nil, err
	}

	signals := []model.Signal{}
	for i := 1; i < len(closes); i++ {
		prev, curr := rsi.Values[i-1], rsi.Values[i]
		if anyNaN(prev, curr) {
			continue
		}
		switch {
		case prev <= r.Oversold && curr > r.Oversold:
			signals = append(signals, model.Signal{
				Time:        bars.Times[i],
				Type:        model.SignalBuy,
				Price:       closes[i],
				Description: fmt.Sprintf("Oversold Exit: %s rose above %.0f", r.RSIName, r.Oversold),
			})
		case prev >= r.Overbought && curr < r.Overbought:
			signals = append(signals, model.Signal{
				Time:        bars.Times[i],
				Type:        model.SignalSell,
				Price:       closes[i],
				Description: fmt.Sprintf("Overbought Exit: %s fell below %.0f", r.RSIName, r.Overbought),
			})
		}
	}
	return signals, nil
}
