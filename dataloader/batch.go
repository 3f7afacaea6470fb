package dataloader

// signal is fired exactly once by the dispatcher. waiters and fired are guarded by the
// dispatcher mutex.
type signal struct {
	done    chan struct{}
	waiters int
	fired   bool
}

type promise[V any] struct {
	signal
	value V
	found bool
	err   error
}

func newPromise[V any]() *promise[V] {
	return &promise[V]{signal: signal{done: make(chan struct{})}}
}

// resolveLocked must be called with the dispatcher mutex held. The first outcome wins.
func (p *promise[V]) resolveLocked(d *Dispatcher, value V, found bool, err error) {
	if p.fired {
		return
	}
	p.value = value
	p.found = found
	p.err = err
	d.fireLocked(&p.signal)
}

// keyBatch collects the keys of one window. It is guarded by the owning loader's mutex.
type keyBatch[K comparable, V any] struct {
	keys   []K
	slots  map[K]*promise[V]
	closed bool
}

func newKeyBatch[K comparable, V any]() *keyBatch[K, V] {
	return &keyBatch[K, V]{slots: make(map[K]*promise[V])}
}

// add returns the slot for key and whether the key was the first of the batch.
func (b *keyBatch[K, V]) add(key K) (*promise[V], bool) {
	if b.closed {
		panic("dataloader: add to drained batch")
	}
	if p, ok := b.slots[key]; ok {
		return p, false
	}
	p := newPromise[V]()
	b.slots[key] = p
	b.keys = append(b.keys, key)
	return p, len(b.keys) == 1
}

// drain closes the batch and hands out its keys in first-seen order. A drained batch
// drains to nothing.
func (b *keyBatch[K, V]) drain() ([]K, map[K]*promise[V]) {
	if b.closed {
		return nil, nil
	}
	b.closed = true
	return b.keys, b.slots
}

func chunks[K any](keys []K, size int) [][]K {
	if size <= 0 || len(keys) <= size {
		return [][]K{keys}
	}
	out := make([][]K, 0, (len(keys)+size-1)/size)
	for len(keys) > size {
		out = append(out, keys[:size:size])
		keys = keys[size:]
	}
	return append(out, keys)
}
