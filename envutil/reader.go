package envutil

import (
	"errors"
	"fmt"
	"log/slog"

	kiterrors "github.com/amp-labs/amp-kit/errors"
)

var (
	// ErrBadEnvVar wraps every parse or validation failure.
	ErrBadEnvVar = errors.New("invalid environment variable")

	// ErrEnvVarMissing is returned by Value for a variable that is not set
	// and has no default.
	ErrEnvVarMissing = errors.New("environment variable not set")
)

const badVarFormat = "%s: %w: %w"

type state uint8

const (
	unset state = iota
	set
	bad
)

// Reader carries one environment variable through parsing and validation.
// A Reader is a value; Map and the options return new ones.
//
// A Reader is in one of three states:
//   - unset: the variable is absent and no default applied
//   - set: a value was read (or defaulted) and every transformation succeeded
//   - bad: the raw value failed to parse or validate
type Reader[A any] struct {
	// key is the variable name, used in errors and logs.
	key   string
	state state
	value A
	// err is the parse or validation failure; only meaningful when bad.
	err error
}

func missing[A any](key string) Reader[A] {
	return Reader[A]{key: key}
}

func found[A any](key string, value A) Reader[A] {
	return Reader[A]{key: key, state: set, value: value}
}

func failed[A any](key string, err error) Reader[A] {
	return Reader[A]{key: key, state: bad, err: err}
}

// Value returns the value, or an error naming the variable if it is unset or
// bad. Bad values match ErrBadEnvVar, unset ones ErrEnvVarMissing.
func (e Reader[A]) Value() (A, error) {
	switch e.state {
	case set:
		return e.value, nil
	case bad:
		return e.value, fmt.Errorf(badVarFormat, e.key, ErrBadEnvVar, e.err)
	default:
		return e.value, fmt.Errorf("%s: %w", e.key, ErrEnvVarMissing)
	}
}

// ValueOrPanic is Value for settings a program cannot start without.
func (e Reader[A]) ValueOrPanic() A {
	value, err := e.Value()
	if err != nil {
		panic(err)
	}

	return value
}

// ValueOrElse returns the value, or fallback if the variable is unset or bad.
// A bad value is logged as a warning first so that a typo does not go
// unnoticed.
//
//	workers := envutil.Int[int](ctx, "WORKERS").ValueOrElse(4)
func (e Reader[A]) ValueOrElse(fallback A) A {
	switch e.state {
	case set:
		return e.value
	case bad:
		slog.Warn("ignoring invalid environment variable",
			"key", e.key, "error", e.err, "fallback", fallback)
	case unset:
	}

	return fallback
}

// DoWithValue calls f only when the Reader is set.
func (e Reader[A]) DoWithValue(f func(A)) {
	if e.state == set {
		f(e.value)
	}
}

// Use is DoWithValue for reading a group of optional settings: a bad value is
// added to errs (named after the variable) instead of reaching f, so every
// problem can be reported at once.
//
//	var errs errors.Collection
//	envutil.Int[int](ctx, "WORKERS").Use(&errs, func(n int) { cfg.Workers = n })
//	envutil.Duration(ctx, "IDLE").Use(&errs, func(d time.Duration) { cfg.Idle = d })
//	return cfg, errs.GetError()
func (e Reader[A]) Use(errs *kiterrors.Collection, f func(A)) {
	switch e.state {
	case set:
		f(e.value)
	case bad:
		errs.Addf(badVarFormat, e.key, ErrBadEnvVar, e.err)
	case unset:
	}
}

// HasValue reports whether the Reader is set.
func (e Reader[A]) HasValue() bool {
	return e.state == set
}

// HasError reports whether parsing or validation failed.
func (e Reader[A]) HasError() bool {
	return e.state == bad
}

func (e Reader[A]) String() string {
	switch e.state {
	case set:
		return fmt.Sprintf("%s=%v", e.key, e.value)
	case bad:
		return fmt.Sprintf("%s=<invalid: %v>", e.key, e.err)
	default:
		return e.key + "=<unset>"
	}
}

// Map applies f to a set value, keeping the type. See the package-level Map.
func (e Reader[A]) Map(f func(A) (A, error)) Reader[A] {
	return Map(e, f)
}

// Map feeds a set value through f, which may change its type. Unset and bad
// Readers pass through with only their type changed; an error from f makes
// the result bad.
//
//	level := envutil.Map(envutil.String(ctx, "LOG_LEVEL"), parseLevel)
func Map[A, B any](rdr Reader[A], f func(A) (B, error)) Reader[B] {
	switch rdr.state {
	case unset:
		return missing[B](rdr.key)
	case bad:
		return failed[B](rdr.key, rdr.err)
	case set:
	}

	out, err := f(rdr.value)
	if err != nil {
		return failed[B](rdr.key, err)
	}

	return found(rdr.key, out)
}
