// Package envutil reads typed configuration out of environment variables.
//
// Each accessor returns a Reader which records whether the variable was set
// and whether it parsed, so callers decide how to handle absence:
//
//	attempts, err := envutil.Uint[uint](ctx, "RETRY_ATTEMPTS", envutil.Default[uint](3)).Value()
//
// Values can be overridden per context with WithEnvOverride, which keeps tests
// free of os.Setenv and safe to run in parallel.
package envutil

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/amp-labs/amp-kit/parse"
)

type envContextKey string

// WithEnvOverride returns a context in which key reads as value, regardless
// of the process environment.
func WithEnvOverride(ctx context.Context, key string, value string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, envContextKey(key), value)
}

func getEnvOverride(ctx context.Context, key string) (string, bool) {
	if ctx == nil {
		return "", false
	}

	val, ok := ctx.Value(envContextKey(key)).(string)

	return val, ok
}

// get looks key up in ctx overrides first, then in the process environment.
func get(ctx context.Context, key string) Reader[string] {
	if val, ok := getEnvOverride(ctx, key); ok {
		return found(key, val)
	}

	if val, ok := os.LookupEnv(key); ok {
		return found(key, val)
	}

	return missing[string](key)
}

func apply[T any](rdr Reader[T], opts []Option[T]) Reader[T] {
	for _, opt := range opts {
		rdr = opt(rdr)
	}

	return rdr
}

// String reads a raw string.
func String(ctx context.Context, key string, opts ...Option[string]) Reader[string] {
	return apply(get(ctx, key), opts)
}

// Bool reads a boolean (true/false, 1/0, yes/no, on/off).
func Bool(ctx context.Context, key string, opts ...Option[bool]) Reader[bool] {
	return apply(Map(get(ctx, key), parse.Bool), opts)
}

// Int reads a signed integer of type I.
func Int[I parse.Signed](ctx context.Context, key string, opts ...Option[I]) Reader[I] {
	return apply(Map(get(ctx, key), parse.Int[I]), opts)
}

// Uint reads an unsigned integer of type U.
func Uint[U parse.Unsigned](ctx context.Context, key string, opts ...Option[U]) Reader[U] {
	return apply(Map(get(ctx, key), parse.Uint[U]), opts)
}

// Float64 reads a finite float.
func Float64(ctx context.Context, key string, opts ...Option[float64]) Reader[float64] {
	return apply(Map(get(ctx, key), parse.Float), opts)
}

// Duration reads a Go duration string or a bare number of milliseconds.
func Duration(ctx context.Context, key string, opts ...Option[time.Duration]) Reader[time.Duration] {
	return apply(Map(get(ctx, key), parse.Duration), opts)
}

// SlogLevel reads a log level name (debug, info, warn, error) or offset
// ("info+2"), as understood by slog.Level.UnmarshalText.
func SlogLevel(ctx context.Context, key string, opts ...Option[slog.Level]) Reader[slog.Level] {
	rdr := Map(get(ctx, key), func(value string) (slog.Level, error) {
		var level slog.Level

		err := level.UnmarshalText([]byte(strings.TrimSpace(value)))

		return level, err
	})

	return apply(rdr, opts)
}
