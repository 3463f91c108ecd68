package timeout

import (
	"context"
	"time"

	"github.com/amp-labs/amp-kit/envutil"
	"github.com/amp-labs/amp-kit/parse"
)

// Call runs work with a limit using a one-off Executor built from opts.
func Call[T any](
	ctx context.Context,
	limit time.Duration,
	work func(ctx context.Context) (T, error),
	opts ...Option,
) (T, error) {
	return Run(New(opts...), ctx, limit, work)
}

// CallMillis is Call with the limit given in whole milliseconds.
func CallMillis[T any](
	ctx context.Context,
	millis int64,
	work func(ctx context.Context) (T, error),
	opts ...Option,
) (T, error) {
	return Call(ctx, parse.Millis(millis), work, opts...)
}

// Do is Call for work that only reports an error.
func Do(ctx context.Context, limit time.Duration, work func(ctx context.Context) error, opts ...Option) error {
	_, err := Call(ctx, limit, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, work(ctx)
	}, opts...)

	return err
}

// Wrap decorates work so that every invocation is bounded by limit.
//
// Example:
//
//	lookup := timeout.Wrap(500*time.Millisecond, resolver.Lookup)
//	addr, err := lookup(ctx)
func Wrap[T any](
	limit time.Duration,
	work func(ctx context.Context) (T, error),
	opts ...Option,
) func(ctx context.Context) (T, error) {
	exec := New(opts...)

	return func(ctx context.Context) (T, error) {
		return Run(exec, ctx, limit, work)
	}
}

// LimitFromEnv reads a limit from the environment variable key (Go duration
// or whole milliseconds), falling back to def when it is unset. A set but
// unparseable value is an error.
func LimitFromEnv(ctx context.Context, key string, def time.Duration) (time.Duration, error) {
	return envutil.Duration(ctx, key, envutil.Default(def)).Value()
}
