package dataloader_test

import (
	"context"
	"fmt"
	"sync"
)

// recorder is a fetch function over a fixed key space that remembers every call.
type recorder struct {
	mu    sync.Mutex
	known map[int]bool
	calls [][]int
	fail  error
}

func newRecorder(known ...int) *recorder {
	r := &recorder{known: make(map[int]bool)}
	for _, k := range known {
		r.known[k] = true
	}
	return r
}

func (r *recorder) fetch(_ context.Context, keys []int) (map[int]string, error) {
	r.mu.Lock()
	r.calls = append(r.calls, append([]int(nil), keys...))
	fail := r.fail
	r.mu.Unlock()
	if fail != nil {
		return nil, fail
	}
	values := make(map[int]string, len(keys))
	for _, k := range keys {
		if r.known[k] {
			values[k] = fmt.Sprintf("value-%d", k)
		}
	}
	return values, nil
}

func (r *recorder) failWith(err error) {
	r.mu.Lock()
	r.fail = err
	r.mu.Unlock()
}

func (r *recorder) Calls() [][]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]int(nil), r.calls...)
}
