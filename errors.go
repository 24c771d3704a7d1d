package shardwriter

import (
	"errors"
	"fmt"
)

var (
	// ErrAllocationExhausted is returned when a shard is requested that is larger than the
	// writer's remaining capacity.
	ErrAllocationExhausted = errors.New("insufficient capacity for shard")

	// ErrShardFull is returned when pushing into a shard that has already been fully used.
	ErrShardFull = errors.New("insufficient capacity")

	// ErrWrongWriter is returned when a shard is committed to a writer other than the one
	// that created it.
	ErrWrongWriter = errors.New("shard returned to wrong writer")

	// ErrIncomplete is returned when a shard is committed before all of its elements were
	// initialised.
	ErrIncomplete = errors.New("elements not initialised")

	// ErrOutOfOrder is returned when shards are committed out-of-order or a shard is missing.
	ErrOutOfOrder = errors.New("shards returned out-of-order")

	// ErrInvalidSize is returned when a negative shard size is requested.
	ErrInvalidSize = errors.New("shard size must not be negative")

	// ErrNilBuffer is returned when a writer is created without a buffer.
	ErrNilBuffer = errors.New("buffer must not be nil")

	// ErrShardClosed is returned when a shard is used after it was committed or closed.
	ErrShardClosed = errors.New("shard already committed or closed")

	// ErrConcurrentUse is returned when two goroutines use the same shard at once.
	ErrConcurrentUse = errors.New("shard used concurrently")

	// ErrInvalidRelease is returned when a nil release function is configured.
	ErrInvalidRelease = errors.New("release function must not be nil")

	// ErrInvalidConcurrency is returned when Fill is configured with a concurrency below 1.
	ErrInvalidConcurrency = errors.New("concurrency must be greater than 0")

	// ErrInvalidCapacity is returned when a buffer pool is created with a negative capacity.
	ErrInvalidCapacity = errors.New("capacity must not be negative")
)

// AllocationError reports a shard request that exceeded the writer's remaining capacity.
//
// It matches ErrAllocationExhausted via errors.Is.
type AllocationError struct {
	Requested int
	Available int
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("tried to take %d when only %d available", e.Requested, e.Available)
}

func (e *AllocationError) Unwrap() error { return ErrAllocationExhausted }

// CommitError describes a rejected commit. The shard it refers to is left unmodified.
//
// The underlying sentinel (ErrWrongWriter, ErrIncomplete, ErrOutOfOrder, ...) can be
// matched with errors.Is.
type CommitError struct {
	Start  int // First index owned by the shard
	End    int // Exclusive end of the shard's range
	Cursor int // Next index the shard would write
	Length int // Buffer length at the time of the commit
	cause  error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit shard [%d, %d) at cursor %d onto length %d: %v",
		e.Start, e.End, e.Cursor, e.Length, e.cause)
}

func (e *CommitError) Unwrap() error { return e.cause }
