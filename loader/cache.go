package loader

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/c360/semunits/unit"
)

// CachingLoader memoizes successful loads of another Loader for a TTL.
// Callers always receive their own copy of a cached config.
type CachingLoader struct {
	inner  unit.Loader
	cache  *cache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCachingLoader wraps inner; entries expire after ttl.
func NewCachingLoader(inner unit.Loader, ttl time.Duration) *CachingLoader {
	return &CachingLoader{
		inner: inner,
		cache: cache.New(ttl, 2*ttl),
	}
}

func cacheKey(target string, params unit.Params) string {
	root, _ := params.Get(unit.ContextLoaderParam)
	return target + "@" + root
}

// Load returns the cached config for target or loads and caches it.
func (l *CachingLoader) Load(ctx context.Context, target string, params unit.Params) (*unit.Config, error) {
	key := cacheKey(target, params)
	if v, ok := l.cache.Get(key); ok {
		l.hits.Add(1)
		return v.(*unit.Config).Clone(), nil
	}
	l.misses.Add(1)

	cfg, err := l.inner.Load(ctx, target, params)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, nil
	}
	l.cache.SetDefault(key, cfg.Clone())
	return cfg, nil
}

// Decode forwards to the wrapped loader.
func (l *CachingLoader) Decode(data []byte) (*unit.Config, error) {
	d, ok := l.inner.(unit.Decoder)
	if !ok {
		return nil, fmt.Errorf("wrapped loader %T cannot decode resources", l.inner)
	}
	return d.Decode(data)
}

// Invalidate drops every cached entry for target.
func (l *CachingLoader) Invalidate(target string) {
	prefix := target + "@"
	for key := range l.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			l.cache.Delete(key)
		}
	}
}

// Flush drops every cached entry.
func (l *CachingLoader) Flush() {
	l.cache.Flush()
}

// Stats returns the hit and miss counts.
func (l *CachingLoader) Stats() (hits, misses int64) {
	return l.hits.Load(), l.misses.Load()
}
