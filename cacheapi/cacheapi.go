package cacheapi

import (
	"context"
	"errors"
)

var (
	ErrCacheKeyNotExist = errors.New("cache key not exist")
)

type ICacheGetter[K comparable, V any] interface {
	Get(ctx context.Context, k K) (V, error)
}

type ICacheSetter[K comparable, V any] interface {
	Set(ctx context.Context, k K, v V) error
}

type ICacheDeleter[K comparable] interface {
	Del(ctx context.Context, k K) error
}

type ICacheLoader[K comparable, V any] interface {
	ICacheGetter[K, V]
	ICacheSetter[K, V]
}

type ICache[K comparable, V any] interface {
	ICacheLoader[K, V]
	ICacheDeleter[K]
}

// IPurgeableCache can drop every entry at once, used when a query result
// spans many keys (e.g. a list) and can not be invalidated key by key.
type IPurgeableCache[K comparable, V any] interface {
	ICache[K, V]
	Purge(ctx context.Context) error
}

type LoadCacheCallbackFunc[K comparable, V any] func(ctx context.Context, miss []K) (map[K]V, error)

func Load[K comparable, V any](ctx context.Context, c ICacheLoader[K, V], k K, cb LoadCacheCallbackFunc[K, V]) (V, bool, error) {
	var defaultV V
	rs, err := LoadMany(ctx, c, []K{k}, cb)
	if err != nil {
		return defaultV, false, err
	}
	v, ok := rs[k]
	if !ok {
		return defaultV, false, nil
	}
	return v, true, nil
}

// LoadMany reads ks from c and fills the misses through cb. Keys cb does not
// return are absent from the result and are not cached.
func LoadMany[K comparable, V any](ctx context.Context, c ICacheLoader[K, V], ks []K, cb LoadCacheCallbackFunc[K, V]) (map[K]V, error) {
	m := make(map[K]V, len(ks))
	miss := make([]K, 0, len(ks))
	for _, k := range ks {
		v, err := c.Get(ctx, k)
		if err != nil {
			if errors.Is(err, ErrCacheKeyNotExist) {
				miss = append(miss, k)
				continue
			}
			return nil, err
		}
		m[k] = v
	}
	if len(miss) == 0 {
		return m, nil
	}
	rs, err := cb(ctx, miss)
	if err != nil {
		return nil, err
	}
	for k, v := range rs {
		m[k] = v
		_ = c.Set(ctx, k, v)
	}
	return m, nil
}

func DelMany[K comparable](ctx context.Context, c ICacheDeleter[K], ks ...K) {
	for _, k := range ks {
		_ = c.Del(ctx, k)
	}
}
