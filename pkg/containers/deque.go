package containers

import (
	"sync"

	"github.com/edwingeng/deque"
)

// DequeQueue implements Queue on top of a chunked deque.
type DequeQueue[T any] struct {
	mu    sync.Mutex
	deque deque.Deque
}

// NewDequeQueue creates an empty DequeQueue.
func NewDequeQueue[T any]() *DequeQueue[T] {
	return &DequeQueue[T]{
		deque: deque.NewDeque(),
	}
}

func (q *DequeQueue[T]) Add(elem T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.deque.PushBack(elem)
}

func (q *DequeQueue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.deque.Len() == 0 {
		var zero T
		return zero, false
	}
	return q.deque.PopFront().(T), true
}

func (q *DequeQueue[T]) Peek() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.deque.Len() == 0 {
		var zero T
		return zero, false
	}
	return q.deque.Front().(T), true
}

func (q *DequeQueue[T]) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.deque.Len()
}
