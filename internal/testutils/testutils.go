// Package testutils holds fixtures shared by the executor tests: units of
// work with scripted behaviour and wall-clock assertions.
package testutils

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/atomic"
)

// ErrInjected is the failure returned by the scripted work below.
var ErrInjected = errors.New("injected failure")

// Elapsed runs f and reports how long it took.
func Elapsed(f func()) time.Duration {
	start := time.Now()

	f()

	return time.Since(start)
}

// AssertWithin runs f and fails the test if it took longer than limit.
func AssertWithin(t testing.TB, limit time.Duration, f func()) time.Duration {
	t.Helper()

	took := Elapsed(f)
	assert.LessOrEqual(t, took, limit, "took %v, expected at most %v", took, limit)

	return took
}

// AssertAtLeast runs f and fails the test if it returned sooner than floor.
func AssertAtLeast(t testing.TB, floor time.Duration, f func()) time.Duration {
	t.Helper()

	took := Elapsed(f)
	assert.GreaterOrEqual(t, took, floor, "took %v, expected at least %v", took, floor)

	return took
}

// Flaky returns work that fails with a numbered ErrInjected for its first
// `failures` calls and then returns value. calls counts every invocation.
func Flaky[T any](failures int64, value T) (work func(ctx context.Context) (T, error), calls *atomic.Int64) {
	calls = atomic.NewInt64(0)

	return func(_ context.Context) (T, error) {
		n := calls.Inc()
		if n <= failures {
			var zero T

			return zero, fmt.Errorf("call %d: %w", n, ErrInjected)
		}

		return value, nil
	}, calls
}

// Sleepy returns work that sleeps for d, ignoring its context, and then
// returns value.
func Sleepy[T any](d time.Duration, value T) func(ctx context.Context) (T, error) {
	return func(_ context.Context) (T, error) {
		time.Sleep(d)

		return value, nil
	}
}

// Cooperative returns work that blocks until its context ends and then
// reports ctx.Err().
func Cooperative[T any]() func(ctx context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		var zero T

		<-ctx.Done()

		return zero, ctx.Err()
	}
}

// Stubborn returns work that ignores its context and only returns once
// release is closed. finished is closed right after that.
func Stubborn[T any](release <-chan struct{}, value T) (work func(ctx context.Context) (T, error), finished <-chan struct{}) {
	done := make(chan struct{})

	return func(_ context.Context) (T, error) {
		defer close(done)

		<-release

		return value, nil
	}, done
}
