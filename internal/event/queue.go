package event

// Queue is a FIFO owned by a single goroutine.
type Queue[T any] struct {
	items []T
}

func NewQueue[T any]() *Queue[T] { return &Queue[T]{} }

func (q *Queue[T]) Push(v T) { q.items = append(q.items, v) }

// Pop removes the oldest item.
func (q *Queue[T]) Pop() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	v := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return v, true
}

func (q *Queue[T]) Len() int { return len(q.items) }

// Clear drops everything queued.
func (q *Queue[T]) Clear() { q.items = nil }
