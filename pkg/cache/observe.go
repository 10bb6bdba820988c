package cache

import (
	"context"
	"time"

	"github.com/matzehuels/roadreveal/pkg/observability"
)

type observed struct {
	Cache
}

// Observe wraps c so that hits, misses and writes are reported to the
// registered observability cache hooks. The hook key type is the key kind
// (sample, path, artifact).
func Observe(c Cache) Cache {
	if c == nil {
		return nil
	}
	return observed{Cache: c}
}

func (o observed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := o.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, KindOf(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, KindOf(key))
		}
	}
	return data, ok, err
}

func (o observed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := o.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, KindOf(key), len(data))
	}
	return err
}
