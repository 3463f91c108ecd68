package retry

import (
	"context"

	"github.com/coder/quartz"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultName = "default"
	tracerName  = "github.com/amp-labs/amp-kit/retry"
)

// Option is a function that configures a Runner or ValueRunner.
type Option func(*options)

// options holds the configuration shared by every Do on a runner.
type options struct {
	name     string               // metrics label, log field and span attribute
	attempts Attempts             // total attempts, clamped to at least 1
	backoff  Backoff              // pause between attempts
	jitter   Jitter               // randomization applied to each pause
	clock    quartz.Clock         // times the pauses
	tracers  trace.TracerProvider // nil means the global provider
}

func newOptions(opts []Option) *options {
	o := &options{
		name:     defaultName,
		attempts: DefaultAttempts,
		backoff:  NoBackoff{},
		jitter:   WithoutJitter,
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.clock == nil {
		o.clock = quartz.NewReal()
	}

	return o
}

func (o *options) maxAttempts() uint {
	return max(uint(o.attempts), 1)
}

func (o *options) tracer() trace.Tracer { //nolint:ireturn
	if o.tracers == nil {
		return otel.Tracer(tracerName)
	}

	return o.tracers.Tracer(tracerName)
}

// wait pauses before the retry that follows the failed attempt with the given
// index. It returns ctx.Err() if ctx ends first.
func (o *options) wait(ctx context.Context, failed uint) error {
	delay := o.jitter.jitter(o.backoff.Delay(failed))
	if delay <= 0 {
		return nil
	}

	timer := o.clock.NewTimer(delay, "retry", "backoff")
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (o *options) canceled(span trace.Span, err error) error {
	outcomes.WithLabelValues(o.name, outcomeCanceled).Inc()
	span.RecordError(err)

	return err
}

// WithAttempts sets the total number of attempts, first call included.
// Values below 1 mean a single attempt.
//
// Example:
//
//	runner := retry.NewRunner(retry.WithAttempts(5))
func WithAttempts(a Attempts) Option {
	return func(o *options) {
		o.attempts = a
	}
}

// WithRetries sets the number of retries after the first attempt, so
// WithRetries(2) is the same as WithAttempts(3).
func WithRetries(n uint) Option {
	return func(o *options) {
		o.attempts = Attempts(n + 1)
	}
}

// WithBackoff configures the pause between attempts. The default is
// NoBackoff.
//
// Example:
//
//	backoff := retry.ExpBackoff{
//	    Base:   100 * time.Millisecond,
//	    Max:    10 * time.Second,
//	    Factor: 2.0,
//	}
//	runner := retry.NewRunner(retry.WithBackoff(backoff))
func WithBackoff(b Backoff) Option {
	return func(o *options) {
		if b == nil {
			b = NoBackoff{}
		}

		o.backoff = b
	}
}

// WithJitter randomizes backoff delays.
//
// Example:
//
//	runner := retry.NewRunner(retry.WithJitter(retry.FullJitter))
func WithJitter(j Jitter) Option {
	return func(o *options) {
		o.jitter = j
	}
}

// WithName sets the name used in metrics, logs and spans. Runners without a
// name share the "default" series.
//
// Example:
//
//	runner := retry.NewRunner(retry.WithName("billing-sync"))
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithClock replaces the clock that times backoff delays. Tests pass a
// quartz mock to step through long backoffs without sleeping.
//
// Example:
//
//	mClock := quartz.NewMock(t)
//	runner := retry.NewRunner(retry.WithClock(mClock), retry.WithBackoff(retry.ConstantBackoff(time.Hour)))
func WithClock(clock quartz.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithTracerProvider sets where retry spans go. The global provider
// (otel.GetTracerProvider) is used otherwise.
//
// Every Do opens one "retry.do" span carrying the runner name and attempt
// budget, with an "attempt failed" event for each failure.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracers = tp
	}
}
