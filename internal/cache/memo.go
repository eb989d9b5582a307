package cache

import (
	"context"
	"fmt"
	"sort"
)

// Call identifies one memoized invocation.
type Call struct {
	Caller string
	Args   []any
	Kwargs map[string]any
	// Bypass skips the lookup, recomputes and overwrites the entry.
	Bypass bool
}

// Do returns the cached result of call when fresh, otherwise runs fn and
// stores its result. Errors from fn are returned and never cached. A nil
// Cache runs fn directly.
func Do[T any](ctx context.Context, c *Cache, call Call, fn func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return fn(ctx)
	}
	key := Key(call.Caller, call.Args, call.Kwargs)
	if !call.Bypass {
		var cached T
		if c.Get(ctx, key, &cached) {
			c.log.Debug().Str("caller", call.Caller).Msg("cache hit")
			return cached, nil
		}
	}

	v, err := fn(ctx)
	if err != nil {
		return v, err
	}
	if err := c.Set(ctx, key, v); err != nil {
		c.log.Warn().Err(err).Str("caller", call.Caller).Msg("cache write failed")
	}
	return v, nil
}

func sortedPairs(kwargs map[string]any) []string {
	pairs := make([]string, 0, len(kwargs))
	for k, v := range kwargs {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, v))
	}
	sort.Strings(pairs)
	return pairs
}
