package shardwriter_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalbasit/shardwriter"
)

func pushOffsets(_ context.Context, _ int, s *shardwriter.Shard[int]) error {
	for s.Remaining() > 0 {
		if err := s.Push(s.OutputOffset()); err != nil {
			return err
		}
	}

	return nil
}

func TestFill(t *testing.T) {
	t.Parallel()

	sizes := []int{8, 2, 10, 0, 31, 1, 16}

	var total int
	for _, n := range sizes {
		total += n
	}

	var logs bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	v := make([]int, 0, total)
	w, err := shardwriter.NewWriter(&v)
	require.NoError(t, err)

	err = shardwriter.Fill(context.Background(), w, sizes, pushOffsets,
		shardwriter.WithConcurrency(3),
		shardwriter.WithLogger(logger),
	)
	require.NoError(t, err)

	require.Len(t, v, total)

	for i, got := range v {
		require.Equal(t, i, got)
	}

	assert.Contains(t, logs.String(), "shards committed")
	assert.NotContains(t, logs.String(), "abandoning")
}

func TestFillInsufficientCapacity(t *testing.T) {
	t.Parallel()

	v := make([]int, 0, 10)
	w, err := shardwriter.NewWriter(&v)
	require.NoError(t, err)

	err = shardwriter.Fill(context.Background(), w, []int{4, 4, 4}, pushOffsets)

	var allocErr *shardwriter.AllocationError
	require.ErrorAs(t, err, &allocErr)
	assert.Equal(t, 12, allocErr.Requested)
	assert.Equal(t, 10, allocErr.Available)
	assert.Equal(t, 0, w.Taken(), "nothing is allocated when the sizes do not fit")

	err = shardwriter.Fill(context.Background(), w, []int{4, -1}, pushOffsets)
	require.ErrorIs(t, err, shardwriter.ErrInvalidSize)
}

// TestFillWorkerError checks that every value pushed is either committed or released.
func TestFillWorkerError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	var pushed, released atomic.Int64

	v := make([]int, 0, 40)
	w, err := shardwriter.NewWriter(&v, shardwriter.WithRelease(func(int) {
		released.Add(1)
	}))
	require.NoError(t, err)

	fn := func(ctx context.Context, i int, s *shardwriter.Shard[int]) error {
		for s.Remaining() > 0 {
			if i == 2 && s.Filled() == 3 {
				return boom
			}

			if err := s.Push(s.OutputOffset()); err != nil {
				return err
			}

			pushed.Add(1)
		}

		return nil
	}

	err = shardwriter.Fill(context.Background(), w, []int{5, 5, 5, 5, 5, 5, 5, 5}, fn,
		shardwriter.WithConcurrency(2),
	)
	require.ErrorIs(t, err, boom)

	assert.LessOrEqual(t, w.Len(), 10, "nothing after the failed shard can be committed")
	assert.Equal(t, pushed.Load(), int64(w.Len())+released.Load())
	assert.Equal(t, 40, w.Taken())

	for i, got := range v {
		assert.Equal(t, i, got)
	}
}

func TestFillIncompleteShard(t *testing.T) {
	t.Parallel()

	v := make([]int, 0, 6)
	w, err := shardwriter.NewWriter(&v)
	require.NoError(t, err)

	fn := func(ctx context.Context, i int, s *shardwriter.Shard[int]) error {
		if i == 0 {
			return s.Push(0)
		}

		return pushOffsets(ctx, i, s)
	}

	err = shardwriter.Fill(context.Background(), w, []int{3, 3}, fn, shardwriter.WithConcurrency(1))
	require.ErrorIs(t, err, shardwriter.ErrIncomplete)
	assert.Empty(t, v)
}

func TestFillCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int64

	v := make([]int, 0, 6)
	w, err := shardwriter.NewWriter(&v)
	require.NoError(t, err)

	err = shardwriter.Fill(ctx, w, []int{3, 3}, func(ctx context.Context, i int, s *shardwriter.Shard[int]) error {
		calls.Add(1)
		return pushOffsets(ctx, i, s)
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), calls.Load())
	assert.Empty(t, v)
}

func TestFillInvalidConcurrency(t *testing.T) {
	t.Parallel()

	v := make([]int, 0, 6)
	w, err := shardwriter.NewWriter(&v)
	require.NoError(t, err)

	err = shardwriter.Fill(context.Background(), w, []int{3}, pushOffsets, shardwriter.WithConcurrency(0))
	require.ErrorIs(t, err, shardwriter.ErrInvalidConcurrency)
	assert.Equal(t, 0, w.Taken())
}
