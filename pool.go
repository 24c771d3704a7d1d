package shardwriter

import "sync"

// BufferPool is a pool of slices with a fixed minimum capacity, for callers that build many
// slices of the same size with a Writer. It reduces allocations by recycling backing arrays
// instead of creating new ones.
type BufferPool[T any] struct {
	pool     sync.Pool
	capacity int
}

// NewBufferPool creates a new BufferPool whose slices have at least the given capacity.
func NewBufferPool[T any](capacity int) (*BufferPool[T], error) {
	if capacity < 0 {
		return nil, ErrInvalidCapacity
	}

	return &BufferPool[T]{capacity: capacity}, nil
}

// Get retrieves an empty slice from the pool, or creates a new one if the pool is empty.
// The slice has length 0 and capacity of at least the pool's capacity.
func (p *BufferPool[T]) Get() []T {
	if v := p.pool.Get(); v != nil {
		return (*v.(*[]T))[:0]
	}

	return make([]T, 0, p.capacity)
}

// Put returns a slice to the pool for reuse.
// Its whole capacity is cleared so the pool does not keep old values reachable. Slices that
// are too small are dropped. The slice should not be used after being returned to the pool.
func (p *BufferPool[T]) Put(buf []T) {
	if cap(buf) < p.capacity {
		return
	}

	clear(buf[:cap(buf)])
	buf = buf[:0]
	p.pool.Put(&buf)
}

// Capacity returns the minimum capacity of the slices handed out by the pool.
func (p *BufferPool[T]) Capacity() int {
	return p.capacity
}
