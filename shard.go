package shardwriter

import "sync/atomic"

type shardState uint8

const (
	stateFilling shardState = iota
	stateCommitted
	stateClosed
)

// Shard is an exclusive handle on part of a Writer's spare capacity. It is used to initialise
// that part of the slice before being committed back to the writer.
//
// A shard may be handed to another goroutine and back, but must only be used by one goroutine
// at a time. Overlapping use is detected and reported as ErrConcurrentUse.
//
// A shard that is not going to be committed must be closed, which clears every value written
// into it. The usual pattern is to defer Close right after allocating; Close is a no-op once
// the shard has been committed.
type Shard[T any] struct {
	owner   *Writer[T]
	storage []T // Full-capacity view shared with the writer and its other shards

	start  int // First offset this shard is responsible for
	end    int // Exclusive end offset
	cursor int // Exclusive offset up to which values have been written

	state shardState
	busy  atomic.Bool
}

// Push appends a value to the shard.
// It returns ErrShardFull if the shard has already been fully used, leaving the shard unchanged.
func (s *Shard[T]) Push(v T) error {
	if !s.acquire() {
		return ErrConcurrentUse
	}
	defer s.releaseBusy()

	if s.state != stateFilling {
		return ErrShardClosed
	}

	if s.cursor == s.end {
		return ErrShardFull
	}

	s.storage[s.cursor] = v
	s.cursor++

	return nil
}

// MustPush is like Push but panics if the shard is full or no longer usable.
func (s *Shard[T]) MustPush(v T) {
	if err := s.Push(v); err != nil {
		panic("shardwriter: " + err.Error())
	}
}

// PushSlice appends as many values from vs as fit into the shard and returns how many were
// written. If not all of vs fits, ErrShardFull is returned along with the partial count.
func (s *Shard[T]) PushSlice(vs []T) (int, error) {
	if !s.acquire() {
		return 0, ErrConcurrentUse
	}
	defer s.releaseBusy()

	if s.state != stateFilling {
		return 0, ErrShardClosed
	}

	n := copy(s.storage[s.cursor:s.end], vs)
	s.cursor += n

	if n < len(vs) {
		return n, ErrShardFull
	}

	return n, nil
}

// OutputOffset returns the offset in the output slice at which the next push will write.
func (s *Shard[T]) OutputOffset() int {
	return s.cursor
}

// Start returns the first offset in the output slice owned by the shard.
func (s *Shard[T]) Start() int {
	return s.start
}

// End returns the exclusive end offset owned by the shard.
func (s *Shard[T]) End() int {
	return s.end
}

// Size returns the number of elements the shard was allocated.
func (s *Shard[T]) Size() int {
	return s.end - s.start
}

// Filled returns the number of values pushed so far.
func (s *Shard[T]) Filled() int {
	return s.cursor - s.start
}

// Remaining returns how many more values can be pushed.
func (s *Shard[T]) Remaining() int {
	return s.end - s.cursor
}

// Full reports whether every element of the shard has been initialised.
func (s *Shard[T]) Full() bool {
	return s.cursor == s.end
}

// Close abandons the shard. Every value pushed so far is passed to the writer's release hook,
// in ascending offset order, and its slot is cleared so that nothing stays reachable through
// the slice's spare capacity. The capacity itself is not given back to the writer.
//
// Closing a committed or already closed shard does nothing.
func (s *Shard[T]) Close() error {
	if !s.acquire() {
		return ErrConcurrentUse
	}
	defer s.releaseBusy()

	if s.state != stateFilling {
		return nil
	}

	var zero T

	for off := s.start; off < s.cursor; off++ {
		if s.owner.release != nil {
			s.owner.release(s.storage[off])
		}

		s.storage[off] = zero
	}

	s.state = stateClosed

	return nil
}

func (s *Shard[T]) acquire() bool {
	return s.busy.CompareAndSwap(false, true)
}

func (s *Shard[T]) releaseBusy() {
	s.busy.Store(false)
}
