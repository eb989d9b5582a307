package strategy

import (
	"fmt"

	"TrendScope/internal/config"
	"TrendScope/internal/model"
)

// Crossover emits a BUY when the fast average crosses above the slow one
// (golden cross) and a SELL when it crosses below (death cross).
type Crossover struct {
	FastName string
	SlowName string
}

// NewCrossover builds a Crossover from fast_ma_name (default SMA_10) and
// slow_ma_name (default SMA_50).
func NewCrossover(p *config.Params) (Strategy, error) {
	fast, err := p.String("fast_ma_name", "SMA_10")
	if err != nil {
		return nil, err
	}
	slow, err := p.String("slow_ma_name", "SMA_50")
	if err != nil {
		return nil, err
	}
	if err := p.Done(); err != nil {
		return nil, err
	}
	return &Crossover{FastName: fast, SlowName: slow}, nil
}

func (c *Crossover) Name() string { return KeySMACrossover }

// GenerateSignals scans consecutive bars. A missing fast or slow indicator
// yields no signals. Bars where any of the four compared values is
// undefined are skipped.
func (c *Crossover) GenerateSignals(bars *model.BarSeries, indicators map[string]*model.IndicatorSeries) ([]model.Signal, error) {
	series, ok := lookup(indicators, c.FastName, c.SlowName)
	if !ok {
		return []model.Signal{}, nil
	}
	fast, slow := series[0], series[1]
	closes, err := aligned(bars, fast, slow)
	if err != nil {
		return nil, err
	}

	signals := []model.Signal{}
	for i := 1; i < len(closes); i++ {
		pf, ps := fast.Values[i-1], slow.Values[i-1]
		cf, cs := fast.Values[i], slow.Values[i]
		if anyNaN(pf, ps, cf, cs) {
			continue
		}
		switch {
		case pf <= ps && cf > cs:
			signals = append(signals, model.Signal{
				Time:        bars.Times[i],
				Type:        model.SignalBuy,
				Price:       closes[i],
				Description: fmt.Sprintf("Golden Cross: %s crossed above %s", c.FastName, c.SlowName),
			})
		case pf >= ps && cf < cs:
			signals = append(signals, model.Signal{
				Time:        bars.Times[i],
				Type:        model.SignalSell,
				Price:       closes[i],
				Description: fmt.Sprintf("Death Cross: %s crossed below %s", c.FastName, c.SlowName),
			})
		}
	}
	return signals, nil
}
