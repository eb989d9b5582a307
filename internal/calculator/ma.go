// Package calculator holds the series arithmetic behind the indicators.
// Every function returns a slice aligned with its input; undefined
// positions are NaN.
package calculator

import (
	"errors"
	"fmt"
	"math"
)

var errPeriod = errors.New("period must be positive")

// SMA computes the simple moving average over the trailing period values.
// Positions before the first full window are NaN.
func SMA(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errPeriod
	}
	if err := checkFinite(values); err != nil {
		return nil, err
	}
	out := nanSlice(len(values))
	for i := period - 1; i < len(values); i++ {
		sum := 0.0
		for j := i - period + 1; j <= i; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(period)
	}
	return out, nil
}

// EMA computes the exponential moving average with alpha = 2/(period+1),
// seeded with the first value. There is no warm-up gap.
func EMA(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errPeriod
	}
	if err := checkFinite(values); err != nil {
		return nil, err
	}
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out, nil
	}
	alpha := 2.0 / float64(period+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out, nil
}

// checkFinite rejects infinities. NaN is allowed and propagates.
func checkFinite(values []float64) error {
	for i, v := range values {
		if math.IsInf(v, 0) {
			return fmt.Errorf("non-finite value %v at index %d", v, i)
		}
	}
	return nil
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
