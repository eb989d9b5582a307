package cache

import (
	"context"
	"time"
)

// NoopStore is a no-op implementation used when caching is disabled. Every lookup misses.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) Get(context.Context, string) ([]byte, error)                { return nil, ErrNotFound }
func (n *NoopStore) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (n *NoopStore) Clear(context.Context) error                               { return nil }
func (n *NoopStore) Close() error                                              { return nil }
