// Package engine runs the analysis pipeline: fetch, indicators, signals, render.
package engine

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"time"

	"TrendScope/internal/collector"
	"TrendScope/internal/errs"
	"TrendScope/internal/indicator"
	"TrendScope/internal/metrics"
	"TrendScope/internal/model"
	"TrendScope/internal/render"
	"TrendScope/internal/strategy"

	"github.com/rs/zerolog"
)

// Pipeline stage names, used in logs and metrics.
const (
	StageFetch      = "fetch"
	StageIndicators = "indicators"
	StageSignals    = "signals"
	StageRender     = "render"
)

// Components are the parts one pipeline is assembled from. Strategy may be nil.
type Components struct {
	Source     collector.Fetcher
	Indicators []indicator.Indicator
	Strategy   strategy.Strategy
	Visualizer render.Visualizer
}

// Engine executes runs over a fixed set of components. It holds no state
// between runs.
type Engine struct {
	c       Components
	log     zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// New creates an engine. m may be nil.
func New(c Components, log zerolog.Logger, m *metrics.Metrics) *Engine {
	return &Engine{c: c, log: log, metrics: m, now: time.Now}
}

// Run executes one batch run. Every failure is returned as an *errs.Error;
// no partial result is produced.
func (e *Engine) Run(ctx context.Context, spec model.FetchSpec, outputPath string) (res *model.AnalysisResult, err error) {
	start := e.now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = string(errs.KindOf(err))
		}
		e.metrics.ObserveRun(outcome)
		e.metrics.ObserveStage("total", e.now().Sub(start))
	}()

	if e.c.Source == nil || e.c.Visualizer == nil {
		return nil, errs.Pipeline("", nil, "pipeline needs a data source and a visualizer")
	}

	e.log.Info().Str("ticker", spec.Ticker).Str("interval", spec.Interval).
		Str("source", e.c.Source.Name()).Msg("starting analysis")

	var bars *model.BarSeries
	if err := e.stage(ctx, StageFetch, func() (err error) {
		bars, err = e.fetch(ctx, spec)
		return err
	}); err != nil {
		return nil, err
	}

	var (
		indicators map[string]*model.IndicatorSeries
		order      []string
	)
	if err := e.stage(ctx, StageIndicators, func() (err error) {
		indicators, order, err = e.calculate(bars)
		return err
	}); err != nil {
		return nil, err
	}

	signals := []model.Signal{}
	if e.c.Strategy != nil {
		if err := e.stage(ctx, StageSignals, func() (err error) {
			signals, err = e.signals(bars, indicators)
			return err
		}); err != nil {
			return nil, err
		}
	}

	if err := e.stage(ctx, StageRender, func() error {
		in := render.Input{Bars: bars, Indicators: indicators, Order: order, Signals: signals}
		if err := e.c.Visualizer.Render(in, outputPath); err != nil {
			return errs.Visualization(e.c.Visualizer.Name(), err, "render %s", outputPath)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	meta := map[string]any{
		model.MetaTicker:     spec.Ticker,
		model.MetaInterval:   spec.Interval,
		model.MetaOutputPath: outputPath,
		model.MetaBars:       bars.Len(),
	}
	if e.c.Strategy != nil {
		meta[model.MetaStrategy] = e.c.Strategy.Name()
	}
	res = &model.AnalysisResult{
		Bars:       bars,
		Indicators: indicators,
		Order:      order,
		Signals:    signals,
		Metadata:   meta,
		CreatedAt:  e.now(),
	}
	buys, sells := res.Counts()
	e.log.Info().Int("bars", bars.Len()).Int("indicators", len(order)).
		Int("buy", buys).Int("sell", sells).Str("output", outputPath).
		Dur("elapsed", e.now().Sub(start)).Msg("analysis complete")
	return res, nil
}

// stage runs fn, timing it and converting panics and untyped errors into
// pipeline errors.
func (e *Engine) stage(ctx context.Context, name string, fn func() error) (err error) {
	if cerr := ctx.Err(); cerr != nil {
		return errs.Pipeline(name, cerr, "run cancelled")
	}
	start := e.now()
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Str("stage", name).Interface("panic", r).Bytes("stack", debug.Stack()).Msg("stage panicked")
			err = errs.Pipeline(name, fmt.Errorf("panic: %v", r), "unexpected failure")
		}
		e.metrics.ObserveStage(name, e.now().Sub(start))
		if err != nil {
			e.log.Error().Err(err).Str("stage", name).Msg("stage failed")
			return
		}
		e.log.Debug().Str("stage", name).Dur("elapsed", e.now().Sub(start)).Msg("stage done")
	}()

	err = fn()
	if err != nil && !errs.IsTyped(err) {
		err = errs.Pipeline(name, err, "stage failed")
	}
	return err
}

func (e *Engine) fetch(ctx context.Context, spec model.FetchSpec) (*model.BarSeries, error) {
	name := e.c.Source.Name()
	bars, err := e.c.Source.Fetch(ctx, spec)
	if err != nil {
		if errs.Is(err, errs.KindDataFetch) {
			return nil, err
		}
		return nil, errs.DataFetch(name, err, "fetch %s", spec.Ticker)
	}
	if bars.Len() == 0 {
		return nil, errs.DataFetch(name, nil, "no data for %s", spec.Ticker)
	}
	e.metrics.ObserveBars(bars.Len())
	e.log.Info().Str("source", name).Int("bars", bars.Len()).
		Time("first", bars.Times[0]).Time("last", bars.Times[bars.Len()-1]).Msg("bars fetched")
	return bars, nil
}

func (e *Engine) calculate(bars *model.BarSeries) (map[string]*model.IndicatorSeries, []string, error) {
	out := make(map[string]*model.IndicatorSeries, len(e.c.Indicators))
	order := make([]string, 0, len(e.c.Indicators))
	for _, ind := range e.c.Indicators {
		name := ind.Name()
		series, err := ind.Calculate(bars)
		if err != nil {
			if errs.Is(err, errs.KindIndicatorCalculation) {
				return nil, nil, err
			}
			return nil, nil, errs.IndicatorCalculation(name, err, "calculation failed")
		}
		if series.Len() != bars.Len() {
			return nil, nil, errs.IndicatorCalculation(name, nil,
				"output has %d values for %d bars", series.Len(), bars.Len())
		}
		if _, dup := out[name]; !dup {
			order = append(order, name)
		}
		out[name] = series
		e.log.Debug().Str("indicator", name).Msg("indicator calculated")
	}
	return out, order, nil
}

func (e *Engine) signals(bars *model.BarSeries, indicators map[string]*model.IndicatorSeries) ([]model.Signal, error) {
	name := e.c.Strategy.Name()
	signals, err := e.c.Strategy.GenerateSignals(bars, indicators)
	if err != nil {
		return nil, errs.Pipeline(name, err, "signal generation failed")
	}
	if signals == nil {
		signals = []model.Signal{}
	}
	sort.SliceStable(signals, func(i, j int) bool { return signals[i].Time.Before(signals[j].Time) })
	for _, s := range signals {
		e.metrics.ObserveSignal(string(s.Type))
	}
	e.log.Info().Str("strategy", name).Int("signals", len(signals)).Msg("signals generated")
	return signals, nil
}
