package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestNewBarSeries_SortsByTime(t *testing.T) {
	s, err := NewBarSeries("AAPL", "1d", []OHLCV{
		{Time: day(3), Close: 3},
		{Time: day(1), Close: 1},
		{Time: day(2), Close: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []float64{1, 2, 3}, s.Close)
	assert.True(t, s.Times[0].Equal(day(1)))
}

func TestNewBarSeries_RejectsDuplicateTimes(t *testing.T) {
	_, err := NewBarSeries("AAPL", "1d", []OHLCV{{Time: day(1)}, {Time: day(1)}})
	assert.Error(t, err)
}

func TestColumn(t *testing.T) {
	s := &BarSeries{Times: []time.Time{day(1), day(2)}, Close: []float64{1, 2}}

	col, err := s.Column(ColClose)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, col)

	_, err = s.Column(ColHigh)
	assert.ErrorContains(t, err, "missing")

	s.Close = []float64{1}
	_, err = s.Column(ColClose)
	assert.Error(t, err)

	_, err = s.Column("Adj Close")
	assert.Error(t, err)
}

func TestFetchSpecRange(t *testing.T) {
	start, end, err := FetchSpec{Start: "2024-01-01", End: "2024-02-01"}.Range()
	require.NoError(t, err)
	assert.Equal(t, day(1), start)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), end)

	start, end, err = FetchSpec{}.Range()
	require.NoError(t, err)
	assert.True(t, start.IsZero())
	assert.True(t, end.IsZero())

	_, _, err = FetchSpec{Start: "2024-02-01", End: "2024-01-01"}.Range()
	assert.Error(t, err)

	_, _, err = FetchSpec{Start: "01/02/2024"}.Range()
	assert.Error(t, err)
}
