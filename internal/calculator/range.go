package calculator

import (
	"errors"
	"fmt"
	"math"
)

// RollingRange returns the highest high and lowest low of the trailing
// period bars. Positions before the first full window are NaN.
func RollingRange(high, low []float64, period int) (hi, lo []float64, err error) {
	if period <= 0 {
		return nil, nil, errPeriod
	}
	if len(high) != len(low) {
		return nil, nil, fmt.Errorf("high has %d values, low has %d", len(high), len(low))
	}
	hi = nanSlice(len(high))
	lo = nanSlice(len(low))
	for i := period - 1; i < len(high); i++ {
		h := math.Inf(-1)
		l := math.Inf(1)
		for j := i - period + 1; j <= i; j++ {
			if math.IsNaN(high[j]) || math.IsNaN(low[j]) {
				h, l = math.NaN(), math.NaN()
				break
			}
			if high[j] > h {
				h = high[j]
			}
			if low[j] < l {
				l = low[j]
			}
		}
		hi[i] = h
		lo[i] = l
	}
	return hi, lo, nil
}

// Position returns where current sits within [low, high], clamped to 0.0~1.0.
// A degenerate range reads 0.5.
func Position(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}

// RangePosition computes Position of each close within its rolling range.
func RangePosition(high, low, close []float64, period int) ([]float64, error) {
	if len(close) != len(high) {
		return nil, fmt.Errorf("close has %d values, high has %d", len(close), len(high))
	}
	if err := checkFinite(close); err != nil {
		return nil, err
	}
	hi, lo, err := RollingRange(high, low, period)
	if err != nil {
		return nil, err
	}
	out := nanSlice(len(close))
	for i := range close {
		if math.IsNaN(hi[i]) || math.IsNaN(lo[i]) || math.IsNaN(close[i]) {
			continue
		}
		pos, err := Position(close[i], hi[i], lo[i])
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		out[i] = pos
	}
	return out, nil
}
