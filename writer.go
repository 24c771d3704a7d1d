package shardwriter

import "fmt"

// Writer builds a slice whose spare capacity is split into shards that are filled
// separately, most likely from separate goroutines, and then committed back in order.
//
// A Writer is not safe for concurrent use. Allocate and Commit must be called from a single
// coordinating goroutine; only the shards themselves may be filled in parallel.
type Writer[T any] struct {
	buf     *[]T // The caller's slice, whose length is extended on commit
	storage []T  // Full-capacity view over the same backing array
	taken   int  // Exclusive end of the capacity handed out so far
	release func(T)
}

// NewWriter creates a new writer that will write into the spare capacity of the supplied slice.
//
// Existing elements are kept: the first shard starts at len(*buf), so the writer's budget is
// cap(*buf) - len(*buf). The slice must not be appended to or resliced by anyone else while the
// writer is in use.
func NewWriter[T any](buf *[]T, opts ...Option[T]) (*Writer[T], error) {
	if buf == nil {
		return nil, ErrNilBuffer
	}

	cfg := defaultConfig[T]()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	return &Writer[T]{
		buf:     buf,
		storage: (*buf)[:cap(*buf)],
		taken:   len(*buf),
		release: cfg.release,
	}, nil
}

// Allocate takes the next n elements of the slice's capacity and returns a shard that owns them.
//
// If fewer than n elements remain, an *AllocationError is returned and the writer is left
// unchanged. The capacity given to a shard is consumed even if the shard is later closed
// without being committed.
func (w *Writer[T]) Allocate(n int) (*Shard[T], error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, n)
	}

	if avail := w.Available(); n > avail {
		return nil, &AllocationError{Requested: n, Available: avail}
	}

	s := &Shard[T]{
		owner:   w,
		storage: w.storage,
		start:   w.taken,
		cursor:  w.taken,
		end:     w.taken + n,
	}
	w.taken += n

	return s, nil
}

// MustAllocate is like Allocate but panics if there is insufficient capacity.
func (w *Writer[T]) MustAllocate(n int) *Shard[T] {
	s, err := w.Allocate(n)
	if err != nil {
		panic("shardwriter: " + err.Error())
	}

	return s
}

// Commit returns a shard to the writer, extending the length of the slice by the size of the
// shard and transferring ownership of the shard's values to the slice.
//
// The shard must have been created by this writer, must be fully initialised, and must start
// exactly at the slice's current length, so shards are committed in the order they were
// allocated. The checks run in that order and the first failure is reported as a *CommitError.
// A rejected shard is left unmodified and may still be pushed to, committed or closed.
//
// After a successful commit the shard can no longer be used.
func (w *Writer[T]) Commit(s *Shard[T]) error {
	if s == nil {
		return ErrShardClosed
	}

	if !s.acquire() {
		return ErrConcurrentUse
	}
	defer s.releaseBusy()

	if err := w.check(s); err != nil {
		return &CommitError{
			Start:  s.start,
			End:    s.end,
			Cursor: s.cursor,
			Length: len(*w.buf),
			cause:  err,
		}
	}

	*w.buf = w.storage[:s.end]
	// The values now belong to the slice; the shard must never clear them.
	s.state = stateCommitted

	return nil
}

func (w *Writer[T]) check(s *Shard[T]) error {
	switch {
	case s.state != stateFilling:
		return ErrShardClosed
	case s.owner != w:
		return ErrWrongWriter
	case s.cursor != s.end:
		return ErrIncomplete
	case s.start != len(*w.buf):
		return ErrOutOfOrder
	default:
		return nil
	}
}

// MustCommit is like Commit but panics on failure.
func (w *Writer[T]) MustCommit(s *Shard[T]) {
	if err := w.Commit(s); err != nil {
		panic(err)
	}
}

// Len returns the number of committed elements, i.e. the current length of the slice.
func (w *Writer[T]) Len() int {
	return len(*w.buf)
}

// Cap returns the fixed capacity of the slice.
func (w *Writer[T]) Cap() int {
	return len(w.storage)
}

// Taken returns the exclusive end offset of the capacity handed out to shards so far.
func (w *Writer[T]) Taken() int {
	return w.taken
}

// Available returns how many elements can still be allocated.
func (w *Writer[T]) Available() int {
	return len(w.storage) - w.taken
}
