// Package timeout runs a unit of work on another goroutine and waits for it
// for at most a fixed duration.
//
// The work receives a context that is cancelled when the limit expires (with
// cause ErrTimeout). Cancellation is cooperative only: nothing can stop a
// goroutine from the outside, so work that never looks at its context keeps
// running in the background after the caller has already been handed a
// timeout error. Such work is counted by the timeout_abandoned_work gauge
// until it finally returns, and its late completion is logged at debug level.
//
// Basic usage:
//
//	body, err := timeout.Call(ctx, 2*time.Second, func(ctx context.Context) ([]byte, error) {
//	    return fetch(ctx, url)
//	})
//	if errors.Is(err, timeout.ErrTimeout) {
//	    // the limit expired, fetch may still be running
//	}
//
// Any other error is the work's own error, returned exactly as the work
// produced it.
package timeout

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/alitto/pond/v2"
	kiterrors "github.com/amp-labs/amp-kit/errors"
	"github.com/amp-labs/amp-kit/logger"
	"go.uber.org/atomic"
)

// MinWait is the shortest wait the executor will perform. Limits below it
// (including zero and negative ones) are raised to it, so the work is always
// submitted and always gets a chance to finish.
const MinWait = time.Millisecond

const defaultName = "default"

var (
	// ErrTimeout is matched (via errors.Is) by every error reporting an expired limit.
	ErrTimeout = errors.New("timed out")

	// ErrRejected is returned when the executor's pool refuses the work, for
	// example because it has been stopped.
	ErrRejected = errors.New("work rejected by pool")
)

// Error reports an expired limit. It unwraps to ErrTimeout.
//
// Example:
//
//	var te *timeout.Error
//	if errors.As(err, &te) {
//	    log.Warn("slow call", "limit", te.Limit, "elapsed", te.Elapsed)
//	}
type Error struct {
	// Limit is the effective limit, after raising it to MinWait.
	Limit time.Duration
	// Elapsed is how long the caller waited before giving up.
	Elapsed time.Duration
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v after %v (limit %v)", ErrTimeout, e.Elapsed.Round(time.Microsecond), e.Limit)
}

func (e *Error) Unwrap() error {
	return ErrTimeout
}

// Executor holds the settings shared by many timeout-bounded calls. The zero
// value is not usable; build one with New.
type Executor struct {
	name string
	pool pond.Pool
}

// Option configures an Executor.
type Option func(*Executor)

// WithName sets the name used in metrics and logs.
func WithName(name string) Option {
	return func(e *Executor) {
		e.name = name
	}
}

// WithPool runs work on a pond worker pool instead of a fresh goroutine.
// A saturated pool queues the work; the limit still counts from submission.
func WithPool(pool pond.Pool) Option {
	return func(e *Executor) {
		e.pool = pool
	}
}

// New creates an Executor.
func New(opts ...Option) *Executor {
	e := &Executor{name: defaultName}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Name returns the executor's metrics/log name.
func (e *Executor) Name() string {
	return e.name
}

const (
	stateRunning int32 = iota
	stateDone
	stateAbandoned
)

type outcome[T any] struct {
	value T
	err   error
}

// Run executes work on its own goroutine (or e's pool) and waits for up to
// limit for it to finish.
//
// It returns:
//   - the work's value and error, unchanged, if it finished in time
//   - an *Error (errors.Is(err, ErrTimeout)) if the limit expired first, or
//     if the work's only failure was noticing that expiry
//   - ctx.Err() if ctx ended first
//
// A panic inside work is recovered and returned as an error wrapping
// errors.ErrPanicRecovery.
func Run[T any](
	e *Executor,
	ctx context.Context,
	limit time.Duration,
	work func(ctx context.Context) (T, error),
) (T, error) {
	var zero T

	if e == nil {
		e = New()
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if limit < MinWait {
		limit = MinWait
	}

	start := time.Now()

	workCtx, cancel := context.WithTimeoutCause(ctx, limit, ErrTimeout)
	defer cancel()

	results := make(chan outcome[T], 1)
	state := atomic.NewInt32(stateRunning)

	task := func() {
		res := invoke(workCtx, work)

		results <- res

		if !state.CompareAndSwap(stateRunning, stateDone) {
			abandonedWork.WithLabelValues(e.name).Dec()
			logger.Get(ctx).Debug("abandoned work finished",
				"executor", e.name, "limit", limit, "elapsed", time.Since(start), "error", res.err)
		}
	}

	var (
		poolTask pond.Task
		refused  <-chan struct{}
	)

	if e.pool != nil {
		poolTask = e.pool.Submit(task)
		refused = poolTask.Done()
	} else {
		go task()
	}

	select {
	case res := <-results:
		return finish(e, workCtx, res, limit, start)

	case <-refused:
		// Done closes only after task has returned, and task publishes its
		// result before returning. No result here means the pool never ran it.
		select {
		case res := <-results:
			return finish(e, workCtx, res, limit, start)
		default:
		}

		calls.WithLabelValues(e.name, outcomeRejected).Inc()

		return zero, fmt.Errorf("%w: %w", ErrRejected, poolTask.Wait())

	case <-workCtx.Done():
		abandonedWork.WithLabelValues(e.name).Inc()

		if !state.CompareAndSwap(stateRunning, stateAbandoned) {
			// The work finished at the same moment; its result wins.
			abandonedWork.WithLabelValues(e.name).Dec()

			return finish(e, workCtx, <-results, limit, start)
		}

		if !errors.Is(context.Cause(workCtx), ErrTimeout) {
			calls.WithLabelValues(e.name, outcomeCanceled).Inc()

			return zero, ctx.Err()
		}

		elapsed := time.Since(start)

		calls.WithLabelValues(e.name, outcomeTimeout).Inc()
		callDuration.WithLabelValues(e.name).Observe(elapsed.Seconds())
		logger.Get(ctx).Debug("work timed out", "executor", e.name, "limit", limit, "elapsed", elapsed)

		return zero, &Error{Limit: limit, Elapsed: elapsed}
	}
}

// finish classifies a result that arrived from the work. An error that is only
// the work reporting our own expiry back to us counts as a timeout.
func finish[T any](
	e *Executor,
	workCtx context.Context, //nolint:revive
	res outcome[T],
	limit time.Duration,
	start time.Time,
) (T, error) {
	var zero T

	elapsed := time.Since(start)
	callDuration.WithLabelValues(e.name).Observe(elapsed.Seconds())

	if res.err == nil {
		calls.WithLabelValues(e.name, outcomeSuccess).Inc()

		return res.value, nil
	}

	if errors.Is(context.Cause(workCtx), ErrTimeout) &&
		(errors.Is(res.err, context.DeadlineExceeded) || errors.Is(res.err, ErrTimeout)) {
		calls.WithLabelValues(e.name, outcomeTimeout).Inc()

		return zero, &Error{Limit: limit, Elapsed: elapsed}
	}

	calls.WithLabelValues(e.name, outcomeFailure).Inc()

	return zero, res.err
}

func invoke[T any](ctx context.Context, work func(ctx context.Context) (T, error)) (res outcome[T]) {
	defer func() {
		if r := recover(); r != nil {
			res = outcome[T]{err: kiterrors.FromPanic(r, debug.Stack())}
		}
	}()

	value, err := work(ctx)

	return outcome[T]{value: value, err: err}
}
