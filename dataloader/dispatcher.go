package dataloader

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Thunk blocks until its value is available.
type Thunk[V any] func() (V, error)

type job interface {
	run(ctx context.Context)
	abort(err error)
}

// Dispatcher decides when the batches of one request are fetched.
//
// It counts the flows of control it knows about: the flow that created it and every task
// started with Go. A flow waiting on a thunk is suspended. Once every known flow is
// suspended, all queued batches are flushed together. Loads issued before the last flow
// suspends therefore share a window, independent of timing. The order of keys inside a
// window follows the order in which concurrent flows reached their loaders.
//
// Fetches are not flows: a window can flush while earlier fetches are still running. Flows
// that wait on each other must do so through thunks, a flow blocked elsewhere keeps the
// window open. Fetch functions must not wait on loaders of their own dispatcher.
type Dispatcher struct {
	ctx    context.Context
	cancel context.CancelCauseFunc

	mu      sync.Mutex
	running int
	queue   []job
	windows int
	err     error
}

// NewDispatcher creates the dispatcher of one request. Cancelling ctx fails every load that
// has not been fetched yet.
func NewDispatcher(ctx context.Context) *Dispatcher {
	ctx, cancel := context.WithCancelCause(ctx)
	d := &Dispatcher{
		ctx:     ctx,
		cancel:  cancel,
		running: 1,
	}
	context.AfterFunc(ctx, func() {
		d.fail(cancelled(context.Cause(ctx)))
	})
	return d
}

// Windows reports how many windows have been flushed so far.
func (d *Dispatcher) Windows() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.windows
}

// Close ends the request. Running fetches see their context cancelled, batches that were
// not fetched yet fail with ErrCancelled, as do loads issued afterwards.
func (d *Dispatcher) Close() {
	d.cancel(errClosed)
	d.fail(cancelled(errClosed))
}

func (d *Dispatcher) schedule(j job) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.queue = append(d.queue, j)
	d.flushLocked()
	return nil
}

func (d *Dispatcher) fail(err error) {
	d.mu.Lock()
	if d.err != nil {
		d.mu.Unlock()
		return
	}
	d.err = err
	jobs := d.queue
	d.queue = nil
	d.mu.Unlock()

	for _, j := range jobs {
		j.abort(err)
	}
}

func (d *Dispatcher) await(ctx context.Context, s *signal) error {
	d.mu.Lock()
	if s.fired {
		d.mu.Unlock()
		return nil
	}
	if ctx.Err() != nil {
		d.mu.Unlock()
		return cancelled(context.Cause(ctx))
	}
	s.waiters++
	d.running--
	d.flushLocked()
	d.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		d.mu.Lock()
		defer d.mu.Unlock()
		if s.fired {
			return nil
		}
		s.waiters--
		d.running++
		return cancelled(context.Cause(ctx))
	}
}

func (d *Dispatcher) flushLocked() {
	if d.running > 0 || len(d.queue) == 0 {
		return
	}
	jobs := d.queue
	d.queue = nil
	d.windows++
	for _, j := range jobs {
		go d.run(j)
	}
}

// run fetches j unless the request ended after j was flushed.
func (d *Dispatcher) run(j job) {
	d.mu.Lock()
	err := d.err
	d.mu.Unlock()
	if err == nil && d.ctx.Err() != nil {
		err = cancelled(context.Cause(d.ctx))
	}
	if err != nil {
		j.abort(err)
		return
	}
	j.run(d.ctx)
}

func (d *Dispatcher) enter() {
	d.mu.Lock()
	d.running++
	d.mu.Unlock()
}

func (d *Dispatcher) exit() {
	d.mu.Lock()
	d.running--
	d.flushLocked()
	d.mu.Unlock()
}

func (d *Dispatcher) settle(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn()
}

// fireLocked wakes the waiters of s. They are counted as running again before the mutex is
// released so the next window cannot close without them.
func (d *Dispatcher) fireLocked(s *signal) {
	if s.fired {
		return
	}
	s.fired = true
	d.running += s.waiters
	s.waiters = 0
	close(s.done)
}

// Go runs fn as a flow known to d. Resolvers that chain loads use it so that their later
// loads still batch with those of sibling resolvers.
func Go[T any](d *Dispatcher, fn func(ctx context.Context) (T, error)) Thunk[T] {
	p := newPromise[T]()
	d.enter()
	go func() {
		defer d.exit()
		value, err := protect(func() (T, error) {
			return fn(d.ctx)
		})
		d.settle(func() {
			p.resolveLocked(d, value, true, err)
		})
	}()

	return func() (T, error) {
		if err := d.await(d.ctx, &p.signal); err != nil {
			var zero T
			return zero, err
		}
		return p.value, p.err
	}
}

func protect[T any](fn func() (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
