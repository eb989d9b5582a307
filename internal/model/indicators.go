package model

import "time"

// IndicatorKind tells a visualizer where to draw an indicator.
type IndicatorKind string

const (
	// KindOverlay is drawn on the price axis.
	KindOverlay IndicatorKind = "overlay"
	// KindOscillator is drawn in its own panel.
	KindOscillator IndicatorKind = "oscillator"
)

// IndicatorSeries is one named indicator output, aligned 1:1 with the bar index.
// Undefined positions hold NaN.
type IndicatorSeries struct {
	Name   string
	Kind   IndicatorKind
	Times  []time.Time
	Values []float64
}

// Len returns the number of values.
func (s *IndicatorSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Values)
}
