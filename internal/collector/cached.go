package collector

import (
	"context"

	"TrendScope/internal/cache"
	"TrendScope/internal/model"
)

// CachedFetcher memoizes another Fetcher's results. Identity distinguishes
// sources of the same kind configured differently (e.g. two CSV files).
type CachedFetcher struct {
	next     Fetcher
	cache    *cache.Cache
	identity string
	// Bypass forces a fresh fetch that overwrites the cached entry.
	Bypass bool
}

// NewCachedFetcher wraps next with c.
func NewCachedFetcher(next Fetcher, c *cache.Cache, identity string, bypass bool) *CachedFetcher {
	return &CachedFetcher{next: next, cache: c, identity: identity, Bypass: bypass}
}

func (c *CachedFetcher) Name() string { return c.next.Name() }

func (c *CachedFetcher) Fetch(ctx context.Context, spec model.FetchSpec) (*model.BarSeries, error) {
	call := cache.Call{
		Caller: "collector." + c.next.Name() + ".Fetch",
		Args:   []any{c.identity, spec.Ticker},
		Kwargs: map[string]any{
			"interval": spec.Interval,
			"start":    spec.Start,
			"end":      spec.End,
		},
		Bypass: c.Bypass,
	}
	return cache.Do(ctx, c.cache, call, func(ctx context.Context) (*model.BarSeries, error) {
		return c.next.Fetch(ctx, spec)
	})
}
