package dataloader

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// FetchFunc loads the values of a deduplicated, ordered list of keys. Keys missing from the
// returned map are not found. The keys slice must not be modified.
type FetchFunc[K comparable, V any] func(ctx context.Context, keys []K) (map[K]V, error)

// Result is the outcome of one key of LoadMany.
type Result[V any] struct {
	Value V
	Found bool
	Err   error
}

// batcher is the machinery shared by Loader and GroupedLoader.
type batcher[K comparable, V any] struct {
	d     *Dispatcher
	fetch FetchFunc[K, V]
	opts  options
	log   logrus.FieldLogger
	// missing produces the outcome of a key absent from the fetch result.
	missing func() (V, bool)

	mu    sync.Mutex
	cache map[K]*promise[V]
	batch *keyBatch[K, V]
}

func newBatcher[K comparable, V any](d *Dispatcher, fetch FetchFunc[K, V], missing func() (V, bool), opts []Option) *batcher[K, V] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	b := &batcher[K, V]{
		d:       d,
		fetch:   fetch,
		opts:    o,
		log:     o.log.WithField("loader", o.name),
		missing: missing,
		batch:   newKeyBatch[K, V](),
	}
	if o.cache {
		b.cache = make(map[K]*promise[V])
	}
	return b
}

func (b *batcher[K, V]) load(key K) *promise[V] {
	b.mu.Lock()
	if p, ok := b.cache[key]; ok {
		b.mu.Unlock()
		return p
	}
	p, first := b.batch.add(key)
	if b.cache != nil {
		b.cache[key] = p
	}
	current := b.batch
	b.mu.Unlock()

	if first {
		if err := b.d.schedule(&batchJob[K, V]{b: b, batch: current}); err != nil {
			b.abort(current, err)
		}
	}
	return p
}

func (b *batcher[K, V]) prime(key K, value V) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cache == nil {
		return false
	}
	if _, ok := b.cache[key]; ok {
		return false
	}
	p := newPromise[V]()
	p.value = value
	p.found = true
	p.fired = true
	close(p.done)
	b.cache[key] = p
	return true
}

// take swaps in a fresh batch before draining kb so loads issued during the fetch start
// the next window.
func (b *batcher[K, V]) take(kb *keyBatch[K, V]) ([]K, map[K]*promise[V]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.batch == kb {
		b.batch = newKeyBatch[K, V]()
	}
	return kb.drain()
}

func (b *batcher[K, V]) dispatch(ctx context.Context, kb *keyBatch[K, V]) {
	keys, slots := b.take(kb)
	for _, chunk := range chunks(keys, b.opts.maxBatch) {
		b.log.WithField("keys", len(chunk)).Debug("fetching batch")
		values, err := protect(func() (map[K]V, error) {
			return b.fetch(ctx, chunk)
		})
		if err != nil {
			if ctx.Err() != nil {
				err = cancelled(context.Cause(ctx))
			} else {
				b.log.WithError(err).WithField("keys", len(chunk)).Warn("batch fetch failed")
			}
		}
		b.settleChunk(chunk, slots, values, err)
	}
}

func (b *batcher[K, V]) settleChunk(keys []K, slots map[K]*promise[V], values map[K]V, err error) {
	var batchErr error
	var keyErrs KeyErrors[K]
	switch {
	case err == nil:
	case errors.Is(err, ErrCancelled):
		batchErr = err
	case b.opts.errorMode == ErrorModePerKey && errors.As(err, &keyErrs):
	default:
		batchErr = &FetchError{Loader: b.opts.name, Err: err}
	}

	b.d.settle(func() {
		var zero V
		for _, key := range keys {
			p := slots[key]
			if batchErr != nil {
				p.resolveLocked(b.d, zero, false, batchErr)
				continue
			}
			if kerr := keyErrs[key]; kerr != nil {
				p.resolveLocked(b.d, zero, false, &FetchError{Loader: b.opts.name, Err: kerr})
				continue
			}
			if value, ok := values[key]; ok {
				p.resolveLocked(b.d, value, true, nil)
				continue
			}
			value, found := b.missing()
			p.resolveLocked(b.d, value, found, nil)
		}
	})
}

func (b *batcher[K, V]) abort(kb *keyBatch[K, V], err error) {
	keys, slots := b.take(kb)
	if len(keys) == 0 {
		return
	}
	b.log.WithError(err).WithField("keys", len(keys)).Debug("batch aborted")
	b.d.settle(func() {
		var zero V
		for _, key := range keys {
			slots[key].resolveLocked(b.d, zero, false, err)
		}
	})
}

// wait blocks until every promise is settled. A cancelled wait aborts the whole call.
func (b *batcher[K, V]) wait(ctx context.Context, promises []*promise[V]) ([]Result[V], error) {
	results := make([]Result[V], len(promises))
	var merr *multierror.Error
	var last error
	for i, p := range promises {
		if err := b.d.await(ctx, &p.signal); err != nil {
			return nil, err
		}
		results[i] = Result[V]{Value: p.value, Found: p.found, Err: p.err}
		// keys of one failed batch share their error
		if p.err != nil && p.err != last {
			merr = multierror.Append(merr, p.err)
			last = p.err
		}
	}
	return results, merr.ErrorOrNil()
}

type batchJob[K comparable, V any] struct {
	b     *batcher[K, V]
	batch *keyBatch[K, V]
}

func (j *batchJob[K, V]) run(ctx context.Context) {
	j.b.dispatch(ctx, j.batch)
}

func (j *batchJob[K, V]) abort(err error) {
	j.b.abort(j.batch, err)
}

// Loader resolves exactly one value per key. A Loader belongs to one request.
type Loader[K comparable, V any] struct {
	b *batcher[K, V]
}

func New[K comparable, V any](d *Dispatcher, fetch FetchFunc[K, V], opts ...Option) *Loader[K, V] {
	return &Loader[K, V]{
		b: newBatcher(d, fetch, func() (V, bool) {
			var zero V
			return zero, false
		}, opts),
	}
}

// LoadThunk queues key without waiting. Keys queued by sibling resolvers before any of the
// thunks is called are fetched together.
func (l *Loader[K, V]) LoadThunk(ctx context.Context, key K) Thunk[V] {
	p := l.b.load(key)
	return func() (V, error) {
		var zero V
		if err := l.b.d.await(ctx, &p.signal); err != nil {
			return zero, err
		}
		if p.err != nil {
			return zero, p.err
		}
		if !p.found {
			return zero, errors.WithMessagef(ErrNotFound, "%s %v", l.b.opts.name, key)
		}
		return p.value, nil
	}
}

// Load returns ErrNotFound when the fetch function did not return key.
func (l *Loader[K, V]) Load(ctx context.Context, key K) (V, error) {
	return l.LoadThunk(ctx, key)()
}

// LoadManyThunk queues keys without waiting.
func (l *Loader[K, V]) LoadManyThunk(ctx context.Context, keys []K) func() ([]Result[V], error) {
	promises := make([]*promise[V], len(keys))
	for i, key := range keys {
		promises[i] = l.b.load(key)
	}
	return func() ([]Result[V], error) {
		return l.b.wait(ctx, promises)
	}
}

// LoadMany returns one Result per key, in the order of keys. Keys that were not found have
// Found unset and no error. The error aggregates the failures of individual keys.
func (l *Loader[K, V]) LoadMany(ctx context.Context, keys []K) ([]Result[V], error) {
	return l.LoadManyThunk(ctx, keys)()
}

// LoadMap returns the found values of keys indexed by key.
func (l *Loader[K, V]) LoadMap(ctx context.Context, keys []K) (map[K]V, error) {
	results, err := l.LoadMany(ctx, keys)
	if results == nil {
		return nil, err
	}
	values := make(map[K]V, len(keys))
	for i, result := range results {
		if result.Found {
			values[keys[i]] = result.Value
		}
	}
	return values, err
}

// Prime stores value for key unless key was already requested. It reports whether the
// cache was changed.
func (l *Loader[K, V]) Prime(key K, value V) bool {
	return l.b.prime(key, value)
}
