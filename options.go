package shardwriter

import "io"

// Option is a function that configures a Writer.
type Option[T any] func(*config[T]) error

// config holds the configuration for a Writer.
type config[T any] struct {
	release func(T)
}

func defaultConfig[T any]() *config[T] {
	return &config[T]{}
}

// WithRelease sets a hook that is invoked for every value held by a shard that is closed
// without being committed. Values are released in ascending offset order before their slots
// are cleared.
//
// Use this for values that own resources which must be given back deterministically, such as
// reference counts or file handles.
func WithRelease[T any](fn func(T)) Option[T] {
	return func(c *config[T]) error {
		if fn == nil {
			return ErrInvalidRelease
		}

		c.release = fn

		return nil
	}
}

// WithCloserRelease releases abandoned values that implement io.Closer by calling Close.
// Errors from Close are ignored. Values that do not implement io.Closer are only cleared.
func WithCloserRelease[T any]() Option[T] {
	return WithRelease(func(v T) {
		if c, ok := any(v).(io.Closer); ok {
			_ = c.Close()
		}
	})
}
