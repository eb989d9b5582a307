// Package registry maps plugin keys to component constructors, one table per
// component kind.
package registry

import (
	"errors"
	"fmt"
	"sort"

	"TrendScope/internal/collector"
	"TrendScope/internal/config"
	"TrendScope/internal/indicator"
	"TrendScope/internal/render"
	"TrendScope/internal/strategy"
)

// ErrNotRegistered is returned by Lookup for an unknown key.
var ErrNotRegistered = errors.New("not registered")

// Constructor builds a component from its configuration parameters.
type Constructor[T any] func(p *config.Params) (T, error)

// Table holds the constructors of one component kind. It is not safe for
// concurrent registration; fill it once at startup.
type Table[T any] struct {
	kind  string
	ctors map[string]Constructor[T]
}

// NewTable creates an empty table. kind appears in lookup errors.
func NewTable[T any](kind string) *Table[T] {
	return &Table[T]{kind: kind, ctors: make(map[string]Constructor[T])}
}

// Register adds ctor under key, replacing any earlier registration.
func (t *Table[T]) Register(key string, ctor Constructor[T]) {
	t.ctors[key] = ctor
}

// Lookup returns the constructor registered under key.
func (t *Table[T]) Lookup(key string) (Constructor[T], error) {
	ctor, ok := t.ctors[key]
	if !ok {
		return nil, fmt.Errorf("%s %q: %w", t.kind, key, ErrNotRegistered)
	}
	return ctor, nil
}

// Keys returns the registered keys in sorted order.
func (t *Table[T]) Keys() []string {
	keys := make([]string, 0, len(t.ctors))
	for k := range t.ctors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Kind returns the component kind this table holds.
func (t *Table[T]) Kind() string { return t.kind }

// Registry groups the per-kind tables.
type Registry struct {
	Indicators  *Table[indicator.Indicator]
	Strategies  *Table[strategy.Strategy]
	Visualizers *Table[render.Visualizer]
	DataSources *Table[collector.Fetcher]
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		Indicators:  NewTable[indicator.Indicator]("indicator"),
		Strategies:  NewTable[strategy.Strategy]("strategy"),
		Visualizers: NewTable[render.Visualizer]("visualizer"),
		DataSources: NewTable[collector.Fetcher]("data source"),
	}
}
