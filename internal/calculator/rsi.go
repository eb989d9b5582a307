package calculator

import "math"

// RSI computes the relative strength index using a simple rolling mean of
// gains and losses over the trailing period price changes. Positions
// before index period are NaN. A window with losses of zero reads 100 when
// it has gains and NaN when it is completely flat.
func RSI(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errPeriod
	}
	if err := checkFinite(values); err != nil {
		return nil, err
	}
	out := nanSlice(len(values))
	for i := period; i < len(values); i++ {
		var gain, loss float64
		for j := i - period + 1; j <= i; j++ {
			change := values[j] - values[j-1]
			if change > 0 {
				gain += change
			} else {
				loss -= change // make positive
			}
		}
		if math.IsNaN(gain) || math.IsNaN(loss) {
			continue
		}
		avgGain := gain / float64(period)
		avgLoss := loss / float64(period)
		switch {
		case avgLoss == 0 && avgGain > 0:
			out[i] = 100
		case avgLoss == 0:
			// flat window, left undefined
		default:
			rs := avgGain / avgLoss
			out[i] = 100.0 - 100.0/(1.0+rs)
		}
	}
	return out, nil
}
