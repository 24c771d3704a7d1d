// Package shardwriter fills the spare capacity of a Go slice in separately-initialised pieces,
// most likely from separate goroutines, without an intermediate copy.
//
// # Overview
//
// A Writer wraps a slice and hands out its spare capacity, left to right, as Shards. Each
// shard owns a disjoint range of the slice's backing array and is filled with Push. Filled
// shards are committed back to the writer, strictly in the order they were allocated, which
// extends the slice's length over the shard's range.
//
// This implementation offers:
//   - Zero copies: values are written straight into the slice's backing array
//   - No locking on Push: shards never overlap, so they can be filled in parallel
//   - Checked commits: wrong writer, incomplete shards and out-of-order commits are rejected
//   - Deterministic cleanup: closing an uncommitted shard releases its values immediately
//
// # Quick Start
//
//	buf := make([]int, 0, 20)
//	w, _ := shardwriter.NewWriter(&buf)
//	s1 := w.MustAllocate(10)
//	s2 := w.MustAllocate(10)
//	// fill s1 and s2, possibly on different goroutines
//	w.MustCommit(s1)
//	w.MustCommit(s2)
//	// len(buf) == 20
//
// Every operation has a fallible form returning an error (Allocate, Commit, Push) and a strict
// form that panics (MustAllocate, MustCommit, MustPush).
//
// If the writer is created over a slice that already has elements, they are kept and the
// first shard starts at the slice's current length.
//
// # Commit Order
//
// Commit checks, in this order, that the shard was allocated by the same writer, that every
// element of the shard has been pushed, and that the shard starts exactly at the slice's
// current length. The first failing check is reported and the shard is left untouched. The
// last check rejects both gaps (committing a later shard first) and duplicate commits.
//
// Sequencer lifts the ordering burden off callers whose shards finish in arbitrary order: it
// holds finished shards back until all earlier ones are committed. Fill goes one step further
// and runs the fill functions on an errgroup, committing through a Sequencer.
//
// # Abandonment
//
// Capacity handed to a shard is never given back, even if the shard is not committed. A shard
// that will not be committed must be closed: Close passes every value pushed so far to the
// hook configured with WithRelease, then clears the slot. Closing after a successful commit is
// a no-op, so the idiomatic pattern is:
//
//	s, err := w.Allocate(n)
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
// # Thread Safety
//
// Writer and Sequencer are not safe for concurrent use: Allocate and Commit must be called
// from one coordinating goroutine. Shards may be moved to worker goroutines and back, and
// different shards can be filled concurrently. A single shard must only be used by one
// goroutine at a time; overlapping calls are detected and fail with ErrConcurrentUse.
package shardwriter
