// Package errs defines the typed failures a pipeline run can end with.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindConfiguration        Kind = "configuration"
	KindFactory              Kind = "factory"
	KindDataFetch            Kind = "data_fetch"
	KindIndicatorCalculation Kind = "indicator_calculation"
	KindVisualization        Kind = "visualization"
	KindPipeline             Kind = "pipeline"
)

// Error is a classified failure. Component names the config section,
// plugin or indicator involved, when there is one.
type Error struct {
	Kind      Kind
	Component string
	Msg       string
	Err       error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Component != "" {
		msg = fmt.Sprintf("%s: %s", e.Component, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, component string, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Component: component, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// Configuration reports a malformed or incomplete configuration tree.
func Configuration(section string, format string, args ...any) *Error {
	return newError(KindConfiguration, section, nil, format, args...)
}

// Factory reports a component that could not be built.
func Factory(component string, cause error, format string, args ...any) *Error {
	return newError(KindFactory, component, cause, format, args...)
}

// DataFetch reports a data source failure.
func DataFetch(source string, cause error, format string, args ...any) *Error {
	return newError(KindDataFetch, source, cause, format, args...)
}

// IndicatorCalculation reports a failed indicator, named by its display name.
func IndicatorCalculation(indicator string, cause error, format string, args ...any) *Error {
	return newError(KindIndicatorCalculation, indicator, cause, format, args...)
}

// Visualization reports a rendering failure.
func Visualization(visualizer string, cause error, format string, args ...any) *Error {
	return newError(KindVisualization, visualizer, cause, format, args...)
}

// Pipeline reports any other failure during a run.
func Pipeline(component string, cause error, format string, args ...any) *Error {
	return newError(KindPipeline, component, cause, format, args...)
}

// As returns the outermost typed error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of the outermost typed error, or "" when err is untyped.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return ""
}

// Is reports whether the outermost typed error in err's chain has the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// IsTyped reports whether err carries a classified failure anywhere in its chain.
func IsTyped(err error) bool {
	_, ok := As(err)
	return ok
}
