package link

import (
	"sync"
	"time"
)

// Queue is an unbounded concurrency-safe FIFO. Push never blocks regardless
// of depth; the absence of backpressure is a deliberate simplification of
// the simulated link, not a defect.
type Queue[T any] struct {
	mu    sync.Mutex
	cond  *sync.Cond
	items []T
}

func NewQueue[T any]() *Queue[T] {
	q := &Queue[T]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends item and wakes one waiter.
func (q *Queue[T]) Push(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()
	q.cond.Signal()
}

// Pop blocks until an item is available.
func (q *Queue[T]) Pop() T {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 {
		q.cond.Wait()
	}
	return q.popLocked()
}

// PopTimeout blocks up to d for an item. The second return is false when the
// timeout elapsed with the queue still empty.
func (q *Queue[T]) PopTimeout(d time.Duration) (T, bool) {
	var zero T
	if d <= 0 {
		return q.TryPop()
	}

	expired := false
	timer := time.AfterFunc(d, func() {
		q.mu.Lock()
		expired = true
		q.mu.Unlock()
		q.cond.Broadcast()
	})
	defer timer.Stop()

	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 {
		if expired {
			return zero, false
		}
		q.cond.Wait()
	}
	return q.popLocked(), true
}

// TryPop returns immediately; false when the queue is empty.
func (q *Queue[T]) TryPop() (T, bool) {
	var zero T
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return zero, false
	}
	return q.popLocked(), true
}

// Len is a best-effort snapshot of the queue depth.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Empty is a best-effort snapshot.
func (q *Queue[T]) Empty() bool {
	return q.Len() == 0
}

func (q *Queue[T]) popLocked() T {
	item := q.items[0]
	var zero T
	q.items[0] = zero
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return item
}
