package dataloader

import (
	"context"
)

// GroupFetchFunc loads every value related to each key. Keys missing from the returned
// map have no values.
type GroupFetchFunc[K comparable, V any] func(ctx context.Context, keys []K) (map[K][]V, error)

// GroupedLoader resolves zero or more values per key, for one-to-many relations.
type GroupedLoader[K comparable, V any] struct {
	b *batcher[K, []V]
}

func NewGrouped[K comparable, V any](d *Dispatcher, fetch GroupFetchFunc[K, V], opts ...Option) *GroupedLoader[K, V] {
	return &GroupedLoader[K, V]{
		b: newBatcher(d, FetchFunc[K, []V](fetch), func() ([]V, bool) {
			return []V{}, true
		}, opts),
	}
}

// LoadThunk queues key without waiting.
func (l *GroupedLoader[K, V]) LoadThunk(ctx context.Context, key K) Thunk[[]V] {
	p := l.b.load(key)
	return func() ([]V, error) {
		if err := l.b.d.await(ctx, &p.signal); err != nil {
			return nil, err
		}
		if p.err != nil {
			return nil, p.err
		}
		return orEmpty(p.value), nil
	}
}

// Load returns the values of key. A key without values yields an empty, non-nil slice.
func (l *GroupedLoader[K, V]) Load(ctx context.Context, key K) ([]V, error) {
	return l.LoadThunk(ctx, key)()
}

func (l *GroupedLoader[K, V]) LoadManyThunk(ctx context.Context, keys []K) func() ([][]V, error) {
	promises := make([]*promise[[]V], len(keys))
	for i, key := range keys {
		promises[i] = l.b.load(key)
	}
	return func() ([][]V, error) {
		results, err := l.b.wait(ctx, promises)
		if results == nil {
			return nil, err
		}
		values := make([][]V, len(results))
		for i, result := range results {
			if result.Err == nil {
				values[i] = orEmpty(result.Value)
			}
		}
		return values, err
	}
}

// LoadMany returns the values of each key, in the order of keys. Failed keys have a nil
// entry and contribute to the returned error.
func (l *GroupedLoader[K, V]) LoadMany(ctx context.Context, keys []K) ([][]V, error) {
	return l.LoadManyThunk(ctx, keys)()
}

func (l *GroupedLoader[K, V]) Prime(key K, values []V) bool {
	return l.b.prime(key, orEmpty(values))
}

func orEmpty[V any](values []V) []V {
	if values == nil {
		return []V{}
	}
	return values
}
