// Package retry re-runs a failing unit of work a fixed number of times.
//
// The work is called on the caller's goroutine, one attempt after another.
// The first success is returned immediately. Every error counts the same; once
// the attempt budget is spent, the error from the final attempt is returned
// exactly as the work produced it (not wrapped, not joined).
//
// By default there are DefaultAttempts attempts in total and no delay between
// them. Backoff and jitter are available as explicit options:
//
//	err := retry.Do(ctx, func(ctx context.Context) error {
//	    return makeAPICall(ctx)
//	}, retry.WithAttempts(5), retry.WithBackoff(retry.ExpBackoff{
//	    Base: 100 * time.Millisecond, Max: 5 * time.Second, Factor: 2,
//	}), retry.WithJitter(retry.FullJitter))
//
// For operations that return values:
//
//	result, err := retry.DoValue(ctx, func(ctx context.Context) (string, error) {
//	    return fetchData(ctx)
//	})
//
// The retry loop never interrupts a running attempt. It does check ctx before
// each attempt and while waiting out a backoff, so wrapping it in
// timeout.Call stops it from starting new attempts once the limit passes.
package retry

import (
	"context"

	"github.com/amp-labs/amp-kit/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Runner executes operations with retry logic.
type Runner interface {
	// Do calls f until it succeeds or the attempt budget is spent. Each call
	// gets a context carrying its 0-based attempt number; see Attempt.
	Do(ctx context.Context, f func(ctx context.Context) error) error
}

// ValueRunner executes value-returning operations with retry logic.
type ValueRunner[T any] interface {
	// Do is Runner.Do for work that produces a value. The value of a failed
	// attempt is discarded.
	Do(ctx context.Context, f func(ctx context.Context) (T, error)) (T, error)
}

// NewRunner creates a Runner. Without options it makes DefaultAttempts
// attempts with no delay in between.
//
// Example:
//
//	runner := retry.NewRunner(retry.WithRetries(4), retry.WithName("billing"))
//	err := runner.Do(ctx, operation)
func NewRunner(opts ...Option) Runner {
	return &runnerImpl{
		opts: newOptions(opts),
	}
}

// NewValueRunner creates a ValueRunner with the same defaults as NewRunner.
func NewValueRunner[T any](opts ...Option) ValueRunner[T] {
	return &valueRunnerImpl[T]{
		opts: newOptions(opts),
	}
}

type runnerImpl struct {
	opts *options
}

func (r *runnerImpl) Do(ctx context.Context, f func(ctx context.Context) error) error {
	return do(ctx, r.opts, f)
}

type valueRunnerImpl[T any] struct {
	opts *options
}

// Do returns the value from the first successful attempt, or the zero value
// and the last attempt's error.
func (v *valueRunnerImpl[T]) Do(ctx context.Context, f func(ctx context.Context) (T, error)) (T, error) {
	var out T

	err := do(ctx, v.opts, func(ctx context.Context) error {
		var err error

		out, err = f(ctx)

		return err
	})
	if err != nil {
		var zero T

		return zero, err
	}

	return out, nil
}

// do is the retry loop.
//
// It returns:
//   - nil as soon as an attempt succeeds
//   - ctx.Err() if ctx ends before an attempt starts or during a backoff wait
//   - the error of the final attempt once the budget is spent
func do(ctx context.Context, opts *options, operation func(ctx context.Context) error) error {
	maxAttempts := opts.maxAttempts()

	ctx, span := opts.tracer().Start(ctx, "retry.do", trace.WithAttributes(
		attribute.String("retry.name", opts.name),
		attribute.Int("retry.max_attempts", int(maxAttempts)), //nolint:gosec
	))
	defer span.End()

	var err error

	for attemptIndex := uint(0); attemptIndex < maxAttempts; attemptIndex++ {
		if attemptIndex > 0 {
			if waitErr := opts.wait(ctx, attemptIndex-1); waitErr != nil {
				return opts.canceled(span, waitErr)
			}
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return opts.canceled(span, ctxErr)
		}

		attemptsTotal.WithLabelValues(opts.name).Inc()

		err = operation(withAttempt(ctx, attemptIndex))
		if err == nil {
			outcomes.WithLabelValues(opts.name, outcomeSuccess).Inc()
			span.SetAttributes(attribute.Int("retry.attempts", int(attemptIndex+1))) //nolint:gosec
			span.SetStatus(codes.Ok, "")

			return nil
		}

		span.AddEvent("attempt failed", trace.WithAttributes(
			attribute.Int("retry.attempt", int(attemptIndex)), //nolint:gosec
			attribute.String("error", err.Error()),
		))

		logger.Get(ctx).Debug("attempt failed",
			"retrier", opts.name, "attempt", attemptIndex+1, "of", maxAttempts, "error", err)
	}

	outcomes.WithLabelValues(opts.name, outcomeExhausted).Inc()
	span.SetAttributes(attribute.Int("retry.attempts", int(maxAttempts))) //nolint:gosec
	span.RecordError(err)
	span.SetStatus(codes.Error, "attempts exhausted")

	return err
}

// Do runs f with retry logic using a one-off Runner.
//
// Example:
//
//	err := retry.Do(ctx, func(ctx context.Context) error {
//	    return makeAPICall(ctx)
//	}, retry.WithAttempts(5))
func Do(ctx context.Context, f func(ctx context.Context) error, opts ...Option) error {
	return NewRunner(opts...).Do(ctx, f)
}

// DoValue runs f with retry logic using a one-off ValueRunner.
func DoValue[T any](ctx context.Context, f func(ctx context.Context) (T, error), opts ...Option) (T, error) {
	return NewValueRunner[T](opts...).Do(ctx, f)
}

// Retrying decorates f so that every call to the result goes through the
// retry loop with the given options.
//
// Example:
//
//	fetch := retry.Retrying(client.Fetch, retry.WithRetries(2))
//	body, err := fetch(ctx)
func Retrying[T any](f func(ctx context.Context) (T, error), opts ...Option) func(ctx context.Context) (T, error) {
	runner := NewValueRunner[T](opts...)

	return func(ctx context.Context) (T, error) {
		return runner.Do(ctx, f)
	}
}
