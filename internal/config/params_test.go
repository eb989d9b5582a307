package config

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParams_Accessors(t *testing.T) {
	p := NewParams(Section{"period": 14, "ratio": 0.5, "label": "x", "flag": true, "whole": 3.0})

	n, err := p.Int("period", 20)
	require.NoError(t, err)
	assert.Equal(t, 14, n)

	w, err := p.Int("whole", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, w)

	f, err := p.Float("ratio", 1)
	require.NoError(t, err)
	assert.Equal(t, 0.5, f)

	s, err := p.String("label", "")
	require.NoError(t, err)
	assert.Equal(t, "x", s)

	b, err := p.Bool("flag", false)
	require.NoError(t, err)
	assert.True(t, b)

	d, err := p.Int("missing", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, d)

	assert.NoError(t, p.Done())
}

func TestParams_TypeErrors(t *testing.T) {
	p := NewParams(Section{"period": "ten", "ratio": "half", "frac": 2.5})
	_, err := p.Int("period", 0)
	assert.Error(t, err)
	_, err = p.Float("ratio", 0)
	assert.Error(t, err)
	_, err = p.Int("frac", 0)
	assert.Error(t, err)
	_, err = p.Bool("period", false)
	assert.Error(t, err)
}

func TestParams_IntOutOfRange(t *testing.T) {
	p := NewParams(Section{
		"huge":     1e30,
		"negative": -1e30,
		"edge":     float64(math.MaxInt64),
		"unsigned": uint64(math.MaxUint64),
		"fits":     int64(42),
	})
	for _, key := range []string{"huge", "negative", "edge", "unsigned"} {
		_, err := p.Int(key, 0)
		assert.ErrorContains(t, err, "expected an integer", key)
	}
	n, err := p.Int("fits", 0)
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}

func TestParams_DoneRejectsUnknown(t *testing.T) {
	p := NewParams(Section{"period": 5, "colour": "red", "alpha": 1})
	_, err := p.Int("period", 0)
	require.NoError(t, err)
	err = p.Done()
	assert.EqualError(t, err, "unexpected parameter(s): alpha, colour")
}

func TestParams_NilSection(t *testing.T) {
	p := NewParams(nil)
	n, err := p.Int("period", 20)
	require.NoError(t, err)
	assert.Equal(t, 20, n)
	assert.NoError(t, p.Done())
}
