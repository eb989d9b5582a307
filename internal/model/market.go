package model

import (
	"fmt"
	"sort"
	"time"
)

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Column names understood by BarSeries.Column.
const (
	ColOpen   = "Open"
	ColHigh   = "High"
	ColLow    = "Low"
	ColClose  = "Close"
	ColVolume = "Volume"
)

// BarSeries is a time-indexed table of OHLCV columns. Every column is
// aligned with Times; a nil column means the source did not provide it.
type BarSeries struct {
	Symbol   string      `json:"symbol"`
	Interval string      `json:"interval"`
	Times    []time.Time `json:"times"`
	Open     []float64   `json:"open,omitempty"`
	High     []float64   `json:"high,omitempty"`
	Low      []float64   `json:"low,omitempty"`
	Close    []float64   `json:"close,omitempty"`
	Volume   []float64   `json:"volume,omitempty"`
}

// NewBarSeries builds a series from rows, sorted by time. Duplicate timestamps are rejected.
func NewBarSeries(symbol, interval string, rows []OHLCV) (*BarSeries, error) {
	sorted := make([]OHLCV, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	s := &BarSeries{
		Symbol:   symbol,
		Interval: interval,
		Times:    make([]time.Time, len(sorted)),
		Open:     make([]float64, len(sorted)),
		High:     make([]float64, len(sorted)),
		Low:      make([]float64, len(sorted)),
		Close:    make([]float64, len(sorted)),
		Volume:   make([]float64, len(sorted)),
	}
	for i, r := range sorted {
		if i > 0 && r.Time.Equal(sorted[i-1].Time) {
			return nil, fmt.Errorf("duplicate bar timestamp %s", r.Time.Format(time.RFC3339))
		}
		s.Times[i] = r.Time
		s.Open[i] = r.Open
		s.High[i] = r.High
		s.Low[i] = r.Low
		s.Close[i] = r.Close
		s.Volume[i] = r.Volume
	}
	return s, nil
}

// Len returns the number of bars in the index.
func (s *BarSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Times)
}

// Column returns the named price column. It fails when the column is absent
// or not aligned with the time index.
func (s *BarSeries) Column(name string) ([]float64, error) {
	if s == nil {
		return nil, fmt.Errorf("column %s: no bars", name)
	}
	var col []float64
	switch name {
	case ColOpen:
		col = s.Open
	case ColHigh:
		col = s.High
	case ColLow:
		col = s.Low
	case ColClose:
		col = s.Close
	case ColVolume:
		col = s.Volume
	default:
		return nil, fmt.Errorf("unknown column %q", name)
	}
	if col == nil {
		return nil, fmt.Errorf("column %s is missing", name)
	}
	if len(col) != len(s.Times) {
		return nil, fmt.Errorf("column %s has %d values for %d bars", name, len(col), len(s.Times))
	}
	return col, nil
}

// FetchSpec describes which bars a data source should return.
// Start and End are optional YYYY-MM-DD dates.
type FetchSpec struct {
	Ticker   string `json:"ticker"`
	Interval string `json:"interval"`
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
}

// DefaultInterval is used when the configuration names none.
const DefaultInterval = "1d"

// DateLayout is the layout of FetchSpec.Start and FetchSpec.End.
const DateLayout = "2006-01-02"

// Range parses Start and End. Zero times mean unset.
func (f FetchSpec) Range() (start, end time.Time, err error) {
	if f.Start != "" {
		if start, err = time.Parse(DateLayout, f.Start); err != nil {
			return start, end, fmt.Errorf("parse start date %q: %w", f.Start, err)
		}
	}
	if f.End != "" {
		if end, err = time.Parse(DateLayout, f.End); err != nil {
			return start, end, fmt.Errorf("parse end date %q: %w", f.End, err)
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return start, end, fmt.Errorf("end date %s is before start date %s", f.End, f.Start)
	}
	return start, end, nil
}
