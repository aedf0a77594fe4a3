package dispatch

import (
	"context"
	"sync"
)

// Queue is a Dispatcher that buffers callbacks until the owner drains them.
// Dispatch is safe for concurrent use; the Run methods must be called from
// the goroutine that owns the tree.
type Queue struct {
	mu      sync.Mutex
	pending []func()
	signal  chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{signal: make(chan struct{}, 1)}
}

// Dispatch enqueues callback. It never blocks.
func (q *Queue) Dispatch(callback func()) {
	if callback == nil {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, callback)
	q.mu.Unlock()
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// Len reports the number of callbacks waiting to run.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *Queue) pop() (func(), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil, false
	}
	fn := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]
	return fn, true
}

// RunPending runs every callback that is already queued, including ones
// enqueued while draining, and returns how many ran. It does not wait.
func (q *Queue) RunPending() int {
	n := 0
	for {
		fn, ok := q.pop()
		if !ok {
			return n
		}
		fn()
		n++
	}
}

// RunNext waits for one callback and runs it. It returns ctx.Err() if the
// context ends first.
func (q *Queue) RunNext(ctx context.Context) error {
	for {
		if fn, ok := q.pop(); ok {
			fn()
			return nil
		}
		select {
		case <-q.signal:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Run drains callbacks as they arrive until ctx ends.
func (q *Queue) Run(ctx context.Context) error {
	for {
		if err := q.RunNext(ctx); err != nil {
			return err
		}
	}
}
