package logger

import "sync"

// RingBuffer is a fixed-capacity circular buffer; once full, pushes evict
// the oldest entry. Safe for concurrent use.
type RingBuffer[T any] struct {
	buffer []T
	head   int
	count  int
	mu     sync.RWMutex
}

// NewRingBuffer creates a ring buffer with the given capacity.
func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	return &RingBuffer[T]{buffer: make([]T, capacity)}
}

// Push adds an item, overwriting the oldest if full.
func (r *RingBuffer[T]) Push(item T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	size := len(r.buffer)
	r.buffer[(r.head+r.count)%size] = item
	if r.count < size {
		r.count++
	} else {
		r.head = (r.head + 1) % size
	}
}

// GetAll returns the items in order from oldest to newest.
func (r *RingBuffer[T]) GetAll() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]T, r.count)
	for i := 0; i < r.count; i++ {
		result[i] = r.buffer[(r.head+i)%len(r.buffer)]
	}
	return result
}

// Len returns the number of buffered items.
func (r *RingBuffer[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}
