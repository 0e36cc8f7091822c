// Package query coalesces and caches backend reads per session scope.
package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pkglog "github.com/manglemix/pony-express/pkg/log"
	"golang.org/x/sync/singleflight"
)

// Cache shares one in-flight call per scope+key and keeps successful
// results for ttl. A zero ttl only coalesces concurrent calls.
type Cache struct {
	backend     Backend
	ttl         time.Duration
	loadTimeout time.Duration
	sf          singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithLoadTimeout bounds each shared call. Shared calls do not stop when
// the caller that started them goes away, so this is their only limit.
func WithLoadTimeout(d time.Duration) Option {
	return func(c *Cache) {
		c.loadTimeout = d
	}
}

func New(backend Backend, ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		backend: backend,
		ttl:     ttl,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the cached value for key in scope, or calls fn once for
// all concurrent callers and caches the result. Errors are not cached.
// Each caller decodes its own copy of the value.
func Fetch[T any](ctx context.Context, c *Cache, scope string, key Key, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	cacheKey := scoped(scope, key)

	v, err, _ := c.sf.Do(cacheKey, func() (interface{}, error) {
		// Other callers may be waiting on this call.
		ctx := context.WithoutCancel(ctx)
		if c.loadTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.loadTimeout)
			defer cancel()
		}
		return c.load(ctx, cacheKey, func(ctx context.Context) (any, error) {
			return fn(ctx)
		})
	})
	if err != nil {
		return zero, err
	}

	data, ok := v.([]byte)
	if !ok {
		return zero, fmt.Errorf("unexpected result type from singleflight")
	}

	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return zero, fmt.Errorf("failed to decode cached %s: %w", key, err)
	}
	return out, nil
}

func (c *Cache) load(ctx context.Context, cacheKey string, fn func(context.Context) (any, error)) ([]byte, error) {
	l := pkglog.Ctx(ctx)

	if c.ttl > 0 {
		data, err := c.backend.Get(ctx, cacheKey)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			// Fall through to the backend call.
			l.Warn().Err(err).Msg("query cache get error")
		}
	}

	value, err := fn(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query result: %w", err)
	}

	if c.ttl > 0 {
		if err := c.backend.Set(ctx, cacheKey, data, c.ttl); err != nil {
			l.Warn().Err(err).Msg("query cache set error")
		}
	}

	return data, nil
}

// Invalidate drops key and every key below it in scope.
func (c *Cache) Invalidate(ctx context.Context, scope string, key Key) error {
	return c.backend.DeletePrefix(ctx, scoped(scope, key))
}

// DropScope drops every key in scope.
func (c *Cache) DropScope(ctx context.Context, scope string) error {
	return c.backend.DeletePrefix(ctx, scope+"|")
}

func (c *Cache) Close() error {
	return c.backend.Close()
}
