// Package factory assembles pipeline components from the configuration tree.
package factory

import (
	"fmt"

	"TrendScope/internal/cache"
	"TrendScope/internal/collector"
	"TrendScope/internal/config"
	"TrendScope/internal/engine"
	"TrendScope/internal/errs"
	"TrendScope/internal/indicator"
	"TrendScope/internal/model"
	"TrendScope/internal/registry"
	"TrendScope/internal/render"
	"TrendScope/internal/strategy"

	"github.com/rs/zerolog"
)

// DefaultOutputPath is used when the visualizer section names no output_path.
const DefaultOutputPath = "results/outputs/chart.html"

// fetchKeys are data_source keys consumed by the factory itself.
var fetchKeys = []string{"type", "ticker", "interval", "start_date", "end_date"}

// Factory builds components from one configuration tree.
type Factory struct {
	cfg    *config.Config
	reg    *registry.Registry
	cache  *cache.Cache
	bypass bool
	log    zerolog.Logger
}

// Option configures a Factory.
type Option func(*Factory)

// WithCache wraps the data source so fetched bars are memoized in c.
// bypass forces a fresh fetch that overwrites the cached entry.
func WithCache(c *cache.Cache, bypass bool) Option {
	return func(f *Factory) {
		f.cache = c
		f.bypass = bypass
	}
}

// WithLogger sets the logger used for skipped entries.
func WithLogger(log zerolog.Logger) Option {
	return func(f *Factory) { f.log = log }
}

// New validates that the required sections are present.
func New(cfg *config.Config, reg *registry.Registry, opts ...Option) (*Factory, error) {
	if cfg == nil {
		return nil, errs.Configuration("", "configuration is empty")
	}
	if cfg.DataSource == nil {
		return nil, errs.Configuration("data_source", "missing required section")
	}
	if cfg.Indicators == nil {
		return nil, errs.Configuration("indicators", "missing required section")
	}
	if cfg.Visualizer == nil {
		return nil, errs.Configuration("visualizer", "missing required section")
	}
	f := &Factory{cfg: cfg, reg: reg, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// BuildFetchSpec reads ticker, interval and the optional date range.
func (f *Factory) BuildFetchSpec() (model.FetchSpec, error) {
	ds := f.cfg.DataSource
	ticker := ds.String("ticker")
	if ticker == "" {
		return model.FetchSpec{}, errs.Configuration("data_source", "missing required key 'ticker'")
	}
	spec := model.FetchSpec{
		Ticker:   ticker,
		Interval: ds.String("interval"),
		Start:    ds.String("start_date"),
		End:      ds.String("end_date"),
	}
	if spec.Interval == "" {
		spec.Interval = model.DefaultInterval
	}
	if _, _, err := spec.Range(); err != nil {
		return model.FetchSpec{}, errs.Configuration("data_source", "%v", err)
	}
	return spec, nil
}

// BuildDataSource constructs the registered data source named by type.
func (f *Factory) BuildDataSource() (collector.Fetcher, error) {
	ds := f.cfg.DataSource
	key := ds.String("type")
	if key == "" {
		return nil, errs.Configuration("data_source", "missing required key 'type'")
	}
	ctor, err := f.reg.DataSources.Lookup(key)
	if err != nil {
		return nil, errs.Factory(key, err, "unknown data source")
	}
	params := ds.Without(fetchKeys...)
	src, err := ctor(config.NewParams(params))
	if err != nil {
		return nil, errs.Factory(key, err, "cannot construct data source")
	}
	if f.cache != nil {
		// params print with sorted keys, so equal configs share entries
		src = collector.NewCachedFetcher(src, f.cache, fmt.Sprintf("%v", map[string]any(params)), f.bypass)
	}
	return src, nil
}

// BuildIndicators constructs the indicators in configuration order. Entries
// without a name are skipped.
func (f *Factory) BuildIndicators() ([]indicator.Indicator, error) {
	out := make([]indicator.Indicator, 0, len(f.cfg.Indicators))
	for i, entry := range f.cfg.Indicators {
		key := entry.String("name")
		if key == "" {
			f.log.Warn().Int("index", i).Msg("indicator entry has no name, skipping")
			continue
		}
		ctor, err := f.reg.Indicators.Lookup(key)
		if err != nil {
			return nil, errs.Factory(key, err, "unknown indicator")
		}
		ind, err := ctor(config.NewParams(entry.Without("name")))
		if err != nil {
			return nil, errs.Factory(key, err, "cannot construct indicator")
		}
		out = append(out, ind)
	}
	return out, nil
}

// BuildStrategy constructs the optional strategy. It returns nil, nil when
// the section is absent.
func (f *Factory) BuildStrategy() (strategy.Strategy, error) {
	sec := f.cfg.Strategy
	if sec == nil {
		return nil, nil
	}
	key := sec.String("name")
	if key == "" {
		return nil, errs.Configuration("strategy", "missing required key 'name'")
	}
	ctor, err := f.reg.Strategies.Lookup(key)
	if err != nil {
		return nil, errs.Factory(key, err, "unknown strategy")
	}
	s, err := ctor(config.NewParams(sec.Without("name")))
	if err != nil {
		return nil, errs.Factory(key, err, "cannot construct strategy")
	}
	return s, nil
}

// BuildVisualizer constructs the visualizer. output_path is not passed on.
func (f *Factory) BuildVisualizer() (render.Visualizer, error) {
	sec := f.cfg.Visualizer
	key := sec.String("name")
	if key == "" {
		return nil, errs.Configuration("visualizer", "missing required key 'name'")
	}
	ctor, err := f.reg.Visualizers.Lookup(key)
	if err != nil {
		return nil, errs.Factory(key, err, "unknown visualizer")
	}
	v, err := ctor(config.NewParams(sec.Without("name", "output_path")))
	if err != nil {
		return nil, errs.Factory(key, err, "cannot construct visualizer")
	}
	return v, nil
}

// OutputPath returns visualizer.output_path or DefaultOutputPath.
func (f *Factory) OutputPath() string {
	if p := f.cfg.Visualizer.String("output_path"); p != "" {
		return p
	}
	return DefaultOutputPath
}

// Plan is everything needed to execute a run.
type Plan struct {
	Components engine.Components
	Spec       model.FetchSpec
	OutputPath string
}

// Build constructs every component. The first failure is returned.
func (f *Factory) Build() (*Plan, error) {
	spec, err := f.BuildFetchSpec()
	if err != nil {
		return nil, err
	}
	src, err := f.BuildDataSource()
	if err != nil {
		return nil, err
	}
	inds, err := f.BuildIndicators()
	if err != nil {
		return nil, err
	}
	strat, err := f.BuildStrategy()
	if err != nil {
		return nil, err
	}
	vis, err := f.BuildVisualizer()
	if err != nil {
		return nil, err
	}
	return &Plan{
		Components: engine.Components{
			Source:     src,
			Indicators: inds,
			Strategy:   strat,
			Visualizer: vis,
		},
		Spec:       spec,
		OutputPath: f.OutputPath(),
	}, nil
}
