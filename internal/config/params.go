package config

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Params hands a Section's values to a component constructor. Each accessor
// marks its key as consumed; Done rejects any key nobody asked for.
type Params struct {
	values Section
	used   map[string]bool
}

// NewParams wraps values. A nil section yields empty params.
func NewParams(values Section) *Params {
	return &Params{values: values, used: make(map[string]bool)}
}

// Int returns an integer parameter or def when absent.
func (p *Params) Int(key string, def int) (int, error) {
	v, ok := p.take(key)
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		if n >= math.MinInt && n <= math.MaxInt {
			return int(n), nil
		}
	case uint64:
		if n <= math.MaxInt {
			return int(n), nil
		}
	case float64:
		// float64(math.MaxInt) rounds up to 2^63, which does not fit
		if n == math.Trunc(n) && n >= math.MinInt && n < math.MaxInt {
			return int(n), nil
		}
	}
	return 0, fmt.Errorf("parameter %q: expected an integer, got %v", key, v)
}

// Float returns a numeric parameter or def when absent.
func (p *Params) Float(key string, def float64) (float64, error) {
	v, ok := p.take(key)
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("parameter %q: expected a number, got %v", key, v)
}

// String returns a string parameter or def when absent.
func (p *Params) String(key, def string) (string, error) {
	v, ok := p.take(key)
	if !ok {
		return def, nil
	}
	s, isStr := v.(string)
	if !isStr {
		return "", fmt.Errorf("parameter %q: expected a string, got %v", key, v)
	}
	return s, nil
}

// Bool returns a boolean parameter or def when absent.
func (p *Params) Bool(key string, def bool) (bool, error) {
	v, ok := p.take(key)
	if !ok {
		return def, nil
	}
	b, isBool := v.(bool)
	if !isBool {
		return false, fmt.Errorf("parameter %q: expected a boolean, got %v", key, v)
	}
	return b, nil
}

// Done fails if any parameter was not consumed.
func (p *Params) Done() error {
	var unknown []string
	for k := range p.values {
		if !p.used[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("unexpected parameter(s): %s", strings.Join(unknown, ", "))
}

func (p *Params) take(key string) (any, bool) {
	p.used[key] = true
	v, ok := p.values[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}
