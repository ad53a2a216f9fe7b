package indicator

import (
	"github.com/gammazero/deque"
)

// Number covers the sample types windows carry: scaled integer prices
// and float gap series.
type Number interface {
	~int64 | ~float64
}

// Window is a fixed-capacity rolling sample buffer. Push appends and
// evicts the oldest sample once the capacity is reached, so the window
// always holds the most recent min(N, capacity) samples in arrival
// order.
type Window[T Number] struct {
	buf      deque.Deque[T]
	capacity int
}

// NewWindow allocates a window. Capacity must be at least 1.
func NewWindow[T Number](capacity int) *Window[T] {
	if capacity < 1 {
		capacity = 1
	}
	w := &Window[T]{capacity: capacity}
	w.buf.Grow(capacity)
	return w
}

// Push appends a sample, evicting the oldest when full. O(1).
func (w *Window[T]) Push(v T) {
	if w.buf.Len() == w.capacity {
		w.buf.PopFront()
	}
	w.buf.PushBack(v)
}

// Len reports the number of retained samples.
func (w *Window[T]) Len() int {
	return w.buf.Len()
}

// Cap reports the window capacity.
func (w *Window[T]) Cap() int {
	return w.capacity
}

// Full reports whether the window holds capacity samples.
func (w *Window[T]) Full() bool {
	return w.buf.Len() == w.capacity
}

// At returns the i-th retained sample, oldest first.
func (w *Window[T]) At(i int) T {
	return w.buf.At(i)
}

// Last returns the most recent sample and false when empty.
func (w *Window[T]) Last() (T, bool) {
	var zero T
	if w.buf.Len() == 0 {
		return zero, false
	}
	return w.buf.Back(), true
}

// Values copies the retained samples, oldest first.
func (w *Window[T]) Values() []T {
	out := make([]T, w.buf.Len())
	for i := range out {
		out[i] = w.buf.At(i)
	}
	return out
}

// Reset drops all samples.
func (w *Window[T]) Reset() {
	w.buf.Clear()
}
