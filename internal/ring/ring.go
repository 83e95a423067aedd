package ring

// Buffer is a fixed-capacity circular buffer. Once full, each Push evicts
// the oldest element. Iteration is always oldest-to-newest regardless of
// where elements physically live. A Buffer is not safe for concurrent use
type Buffer[T any] struct {
	items []T
	head  int
	size  int
}

// New creates a Buffer with the specified capacity. A capacity of zero
// produces a Buffer that retains nothing
func New[T any](capacity int) *Buffer[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer[T]{
		items: make([]T, capacity),
	}
}

// Cap returns the capacity of the Buffer
func (b *Buffer[_]) Cap() int {
	return len(b.items)
}

// Len returns the number of elements currently retained
func (b *Buffer[_]) Len() int {
	return b.size
}

// Push appends an element, evicting the oldest one if the Buffer is full
func (b *Buffer[T]) Push(item T) {
	c := len(b.items)
	if c == 0 {
		return
	}
	if b.size < c {
		b.items[b.index(b.size)] = item
		b.size++
		return
	}
	b.items[b.head] = item
	b.head = (b.head + 1) % c
}

// Shift removes and returns the oldest element
func (b *Buffer[T]) Shift() (T, bool) {
	var zero T
	if b.size == 0 {
		return zero, false
	}
	res := b.items[b.head]
	b.items[b.head] = zero
	b.head = (b.head + 1) % len(b.items)
	b.size--
	return res, true
}

// ForEach visits every element from oldest to newest
func (b *Buffer[T]) ForEach(fn func(T)) {
	switch b.size {
	case 0:
		return
	case 1:
		fn(b.items[b.head])
	case 2:
		fn(b.items[b.head])
		fn(b.items[b.index(1)])
	case 3:
		fn(b.items[b.head])
		fn(b.items[b.index(1)])
		fn(b.items[b.index(2)])
	default:
		for i := range b.size {
			fn(b.items[b.index(i)])
		}
	}
}

// Values returns a copy of the retained elements, oldest first
func (b *Buffer[T]) Values() []T {
	res := make([]T, 0, b.size)
	b.ForEach(func(item T) {
		res = append(res, item)
	})
	return res
}

// Clear empties the Buffer without changing its capacity
func (b *Buffer[T]) Clear() {
	clear(b.items)
	b.head = 0
	b.size = 0
}

func (b *Buffer[_]) index(offset int) int {
	return (b.head + offset) % len(b.items)
}
