package shardwriter

import (
	"errors"
	"fmt"

	"github.com/eapache/queue"
)

// Sequencer allocates shards from a Writer and commits them in allocation order as they are
// finished, regardless of the order in which they come back from workers.
//
// Finished shards that are ahead of an unfinished one are held until every shard before them
// has been committed. Like the Writer it wraps, a Sequencer is not safe for concurrent use and
// belongs to the coordinating goroutine.
type Sequencer[T any] struct {
	w       *Writer[T]
	pending *queue.Queue // *Shard[T] in allocation order, oldest first
	issued  map[*Shard[T]]bool
}

// NewSequencer creates a Sequencer that allocates from and commits to w.
func NewSequencer[T any](w *Writer[T]) *Sequencer[T] {
	return &Sequencer[T]{
		w:       w,
		pending: queue.New(),
		issued:  make(map[*Shard[T]]bool),
	}
}

// Allocate takes the next n elements from the writer and tracks the returned shard.
func (q *Sequencer[T]) Allocate(n int) (*Shard[T], error) {
	s, err := q.w.Allocate(n)
	if err != nil {
		return nil, err
	}

	q.pending.Add(s)
	q.issued[s] = false

	return s, nil
}

// Done marks s as finished and commits every shard at the head of the queue that is finished.
// It returns the number of shards committed by this call.
//
// If the commit of a finished shard fails, that shard is marked unfinished again, the error is
// returned, and the shard stays pending.
func (q *Sequencer[T]) Done(s *Shard[T]) (int, error) {
	if _, ok := q.issued[s]; !ok {
		return 0, fmt.Errorf("%w: shard not issued by this sequencer", ErrWrongWriter)
	}

	q.issued[s] = true

	var committed int

	for q.pending.Length() > 0 {
		head := q.pending.Peek().(*Shard[T])
		if !q.issued[head] {
			break
		}

		if err := q.w.Commit(head); err != nil {
			q.issued[head] = false

			return committed, err
		}

		q.pending.Remove()
		delete(q.issued, head)
		committed++
	}

	return committed, nil
}

// Pending returns the number of allocated shards that have not been committed yet.
func (q *Sequencer[T]) Pending() int {
	return q.pending.Length()
}

// Close closes every pending shard, oldest first, and stops tracking them.
func (q *Sequencer[T]) Close() error {
	var errs []error

	for q.pending.Length() > 0 {
		s := q.pending.Remove().(*Shard[T])
		delete(q.issued, s)

		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
