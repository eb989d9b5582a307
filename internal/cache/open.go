package cache

import (
	"context"
	"fmt"
	"path/filepath"

	"TrendScope/internal/config"

	"github.com/rs/zerolog"
)

// Open builds the Cache described by cfg. Backend "none" yields a cache
// that never hits.
func Open(ctx context.Context, cfg config.CacheConfig, log zerolog.Logger, opts ...Option) (*Cache, error) {
	codec, err := CodecByName(cfg.Codec)
	if err != nil {
		return nil, err
	}

	var store Store
	switch cfg.Backend {
	case "", "file":
		store, err = NewFileStore(cfg.Dir)
	case "sqlite":
		path := cfg.Path
		if path == "" {
			path = filepath.Join(cfg.Dir, "cache.db")
		}
		store, err = NewSQLiteStore(path, log)
	case "redis":
		addr := cfg.Addr
		if addr == "" {
			addr = "localhost:6379"
		}
		store, err = NewRedisStore(ctx, addr, cfg.Password, cfg.DB, cfg.Prefix)
	case "memory":
		store = NewMemoryStore()
	case "none":
		store = NewNoopStore()
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", cfg.Backend, err)
	}

	opts = append([]Option{WithCodec(codec), WithLogger(log)}, opts...)
	return New(store, cfg.TTL, opts...), nil
}
