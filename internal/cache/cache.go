// Package cache memoizes expensive calls behind a time-to-live. Entries are
// framed in a checksummed envelope and kept in a pluggable Store; anything
// that cannot be read back is treated as a miss.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned by a Store when the key has no entry.
var ErrNotFound = errors.New("cache: entry not found")

// ErrPruneUnsupported is returned by Cache.Prune when the store keeps no
// expiry index.
var ErrPruneUnsupported = errors.New("cache: store does not support pruning")

// Store is the backing key/value storage of a Cache. ttl is an expiry hint;
// freshness is decided by the Cache from the envelope timestamp.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Clear(ctx context.Context) error
	io.Closer
}

// Pruner is implemented by stores that can drop expired entries in bulk.
type Pruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// Observer is told about every lookup.
type Observer interface {
	ObserveCache(hit bool)
}

// Cache is a TTL cache over a Store.
type Cache struct {
	store    Store
	codec    Codec
	ttl      time.Duration
	now      func() time.Time
	log      zerolog.Logger
	observer Observer
}

// Option configures a Cache.
type Option func(*Cache)

// WithCodec sets the payload codec. JSON is the default.
func WithCodec(codec Codec) Option { return func(c *Cache) { c.codec = codec } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(c *Cache) { c.now = now } }

// WithLogger sets the logger used for miss diagnostics.
func WithLogger(log zerolog.Logger) Option { return func(c *Cache) { c.log = log } }

// WithObserver registers a hit/miss observer.
func WithObserver(o Observer) Option { return func(c *Cache) { c.observer = o } }

// New creates a Cache over store with the given time-to-live.
func New(store Store, ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		store: store,
		codec: JSONCodec{},
		ttl:   ttl,
		now:   time.Now,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the configured time-to-live.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get decodes the entry for key into dest. It reports a hit only when an
// entry exists, is no older than the TTL and decodes cleanly.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	hit := c.get(ctx, key, dest)
	if c.observer != nil {
		c.observer.ObserveCache(hit)
	}
	return hit
}

func (c *Cache) get(ctx context.Context, key string, dest any) bool {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.log.Debug().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}
	writtenAt, payload, err := decodeEnvelope(data)
	if err != nil {
		c.log.Debug().Err(err).Str("key", key).Msg("discarding unreadable cache entry")
		return false
	}
	if age := c.now().Sub(writtenAt); age > c.ttl {
		c.log.Debug().Str("key", key).Dur("age", age).Msg("cache entry expired")
		return false
	}
	if err := c.codec.Unmarshal(payload, dest); err != nil {
		c.log.Debug().Err(err).Str("key", key).Msg("cache payload decode failed")
		return false
	}
	return true
}

// Set stores value under key, replacing any previous entry and resetting its age.
func (c *Cache) Set(ctx context.Context, key string, value any) error {
	payload, err := c.codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value: %w", err)
	}
	if err := c.store.Set(ctx, key, encodeEnvelope(c.now(), payload), c.ttl); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// Clear drops every entry of the underlying store.
func (c *Cache) Clear(ctx context.Context) error {
	return c.store.Clear(ctx)
}

// Prune drops entries that expired before now and returns how many were
// removed.
func (c *Cache) Prune(ctx context.Context) (int64, error) {
	p, ok := c.store.(Pruner)
	if !ok {
		return 0, ErrPruneUnsupported
	}
	return p.Prune(ctx, c.now())
}

// Close releases the store.
func (c *Cache) Close() error {
	return c.store.Close()
}

// Key derives a cache key from a caller identity, its positional arguments
// and its keyword arguments. Keyword order does not matter.
func Key(caller string, args []any, kwargs map[string]any) string {
	material := struct {
		Caller string         `json:"caller"`
		Args   []any          `json:"args"`
		Kwargs map[string]any `json:"kwargs"`
	}{caller, args, kwargs}

	// encoding/json writes map keys in sorted order
	data, err := json.Marshal(material)
	if err != nil {
		data = []byte(fmt.Sprintf("%s|%v|%v", caller, args, sortedPairs(kwargs)))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
