package shardwriter

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// FillFunc initialises one shard. i is the index of the shard's size in the sizes passed to
// Fill. The shard must be full when FillFunc returns nil.
type FillFunc[T any] func(ctx context.Context, i int, s *Shard[T]) error

// FillOption configures Fill.
type FillOption func(*fillConfig) error

type fillConfig struct {
	concurrency int
	logger      *slog.Logger
}

// WithConcurrency limits how many shards are filled at the same time.
// Defaults to runtime.GOMAXPROCS(0).
func WithConcurrency(n int) FillOption {
	return func(c *fillConfig) error {
		if n < 1 {
			return ErrInvalidConcurrency
		}

		c.concurrency = n

		return nil
	}
}

// WithLogger sets the logger used to trace allocation, commit and abandonment at debug level.
// A nil logger discards all output, which is also the default.
func WithLogger(l *slog.Logger) FillOption {
	return func(c *fillConfig) error {
		if l == nil {
			l = slog.New(slog.DiscardHandler)
		}

		c.logger = l

		return nil
	}
}

// Fill allocates one shard per entry in sizes, fills them concurrently with fn and commits
// them to w in allocation order as they finish.
//
// Capacity is checked up front: if the sizes do not fit, nothing is allocated and an
// *AllocationError is returned. If fn fails, a finished shard cannot be committed, or ctx is
// cancelled, every shard that has not been committed yet is closed and the first error is
// returned. Shards committed before the failure stay committed.
func Fill[T any](ctx context.Context, w *Writer[T], sizes []int, fn FillFunc[T], opts ...FillOption) error {
	cfg := &fillConfig{
		concurrency: runtime.GOMAXPROCS(0),
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return err
		}
	}

	var total int

	for _, n := range sizes {
		if n < 0 {
			return ErrInvalidSize
		}

		total += n
		if total > w.Available() || total < 0 {
			return &AllocationError{Requested: total, Available: w.Available()}
		}
	}

	seq := NewSequencer(w)

	shards := make([]*Shard[T], len(sizes))
	for i, n := range sizes {
		s, err := seq.Allocate(n)
		if err != nil {
			_ = seq.Close()

			return err
		}

		shards[i] = s
	}

	cfg.logger.DebugContext(ctx, "shards allocated",
		"count", len(shards),
		"elements", total,
		"concurrency", cfg.concurrency,
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.concurrency)

	finished := make(chan *Shard[T], len(shards))
	waited := make(chan error, 1)

	go func() {
		for i, s := range shards {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}

				if err := fn(gctx, i, s); err != nil {
					return err
				}

				finished <- s

				return nil
			})
		}

		err := g.Wait()
		close(finished)
		waited <- err
	}()

	var commitErr error

	for s := range finished {
		if commitErr != nil {
			continue
		}

		n, err := seq.Done(s)
		if err != nil {
			commitErr = err
			cancel()

			continue
		}

		if n > 0 {
			cfg.logger.DebugContext(ctx, "shards committed",
				"count", n,
				"length", w.Len(),
			)
		}
	}

	// A failed commit cancels the workers, so their context errors must not mask it.
	err := <-waited
	if commitErr != nil {
		err = commitErr
	}

	if pending := seq.Pending(); pending > 0 {
		cfg.logger.DebugContext(ctx, "abandoning uncommitted shards",
			"count", pending,
			"length", w.Len(),
			"error", err,
		)
	}

	if cerr := seq.Close(); err == nil {
		err = cerr
	}

	return err
}
