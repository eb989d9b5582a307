package commands

import (
	"context"
	"io"

	"TrendScope/internal/cache"
	"TrendScope/internal/config"
	"TrendScope/internal/engine"
	"TrendScope/internal/errs"
	"TrendScope/internal/factory"
	"TrendScope/internal/logger"
	"TrendScope/internal/metrics"
	"TrendScope/internal/model"
	"TrendScope/internal/plugins"
	"TrendScope/internal/registry"

	"github.com/rs/zerolog"
)

// app is the wiring shared by every command.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	reg     *registry.Registry
	metrics *metrics.Metrics
	cache   *cache.Cache
	closers []io.Closer
}

// newApp loads the configuration, builds the logger and registers plugins.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, errs.Configuration("", "%v", err)
	}
	dropped := cfg.Apply(overrides())
	if err := cfg.Validate(); err != nil {
		return nil, errs.Configuration("", "%v", err)
	}

	log, closer, err := logger.New(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
	if err != nil {
		return nil, errs.Configuration("logging", "%v", err)
	}
	rootLog = log
	if len(dropped) > 0 {
		log.Warn().Strs("overrides", dropped).Msg("flags ignored: configuration section missing")
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		reg:     registry.New(),
		metrics: metrics.New(),
		closers: []io.Closer{closer},
	}
	plugins.Register(a.reg, plugins.Deps{Proxy: cfg.Proxy})

	c, err := cache.Open(ctx, cfg.Cache, logger.Component(log, "cache"), cache.WithObserver(a.metrics))
	if err != nil {
		log.Warn().Err(err).Str("backend", cfg.Cache.Backend).Msg("cache unavailable, running without it")
	} else {
		a.cache = c
		a.closers = append(a.closers, c)
	}
	log.Debug().Str("config", configFile).Str("cache", cfg.Cache.Backend).Msg("configuration loaded")
	return a, nil
}

// pipeline builds the engine and the run plan from the configuration.
func (a *app) pipeline() (*engine.Engine, *factory.Plan, error) {
	opts := []factory.Option{factory.WithLogger(logger.Component(a.log, "factory"))}
	if a.cache != nil {
		opts = append(opts, factory.WithCache(a.cache, noCache))
	}
	f, err := factory.New(a.cfg, a.reg, opts...)
	if err != nil {
		return nil, nil, err
	}
	plan, err := f.Build()
	if err != nil {
		return nil, nil, err
	}
	eng := engine.New(plan.Components, logger.Component(a.log, "engine"), a.metrics)
	return eng, plan, nil
}

// run executes the pipeline once and exports metrics when asked to.
func (a *app) run(ctx context.Context, eng *engine.Engine, plan *factory.Plan) (*model.AnalysisResult, error) {
	res, err := eng.Run(ctx, plan.Spec, plan.OutputPath)
	a.writeMetrics()
	return res, err
}

func (a *app) writeMetrics() {
	path := metricsFile
	if path == "" {
		path = a.cfg.Metrics.File
	}
	if path == "" {
		return
	}
	if err := a.metrics.WriteFile(path); err != nil {
		a.log.Warn().Err(err).Str("path", path).Msg("metrics export failed")
	}
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.log.Warn().Err(err).Msg("close")
		}
	}
}
