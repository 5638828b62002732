package transport

import (
	"context"
	"sync"
)

// Queue is an unbounded FIFO with one consumer. Put never blocks; Take
// blocks until an item arrives, the queue closes or ctx ends.
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	head   int
	closed bool
	notify chan struct{}
	done   chan struct{}
}

// NewQueue returns an empty open queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Put appends v and returns the depth after the append. It fails with
// ErrQueueClosed once Close was called.
func (q *Queue[T]) Put(v T) (int, error) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return 0, ErrQueueClosed
	}
	q.items = append(q.items, v)
	depth := len(q.items) - q.head
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return depth, nil
}

// Take removes the oldest item. ok is false when the queue is closed or ctx
// is done; items still queued at that point are left for Drain.
func (q *Queue[T]) Take(ctx context.Context) (v T, ok bool) {
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return v, false
		}
		if q.head < len(q.items) {
			v = q.items[q.head]
			var zero T
			q.items[q.head] = zero
			q.head++
			if q.head == len(q.items) {
				q.items = q.items[:0]
				q.head = 0
			}
			q.mu.Unlock()
			return v, true
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return v, false
		case <-q.done:
			return v, false
		case <-q.notify:
		}
	}
}

// Close rejects further Puts and wakes the consumer. It is idempotent.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
}

// Closed reports whether Close was called.
func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Drain removes and returns every queued item, oldest first.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := append([]T(nil), q.items[q.head:]...)
	clear(q.items)
	q.items = q.items[:0]
	q.head = 0
	return out
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}
