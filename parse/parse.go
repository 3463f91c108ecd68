// Package parse contains small string-to-value parsers. Every parser has the
// shape func(string) (T, error) so that it can be plugged into envutil.Map or
// chained with other transformers; the *Or variants swallow the error and
// return a caller-supplied default instead.
package parse

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
	"unsafe"
)

const portMax = 65535

var (
	ErrEmpty         = errors.New("empty value")
	ErrInvalidChoice = errors.New("invalid choice")
	ErrNonPositive   = errors.New("value must be positive")
	ErrBadPort       = errors.New("invalid port number")
	ErrOutOfRange    = errors.New("value out of range")
)

// Signed is the set of signed integer types Int can produce.
type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is the set of unsigned integer types Uint can produce.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Numeric covers everything Positive accepts.
type Numeric interface {
	Signed | Unsigned | ~float32 | ~float64
}

// Trim removes surrounding whitespace.
func Trim(s string) (string, error) {
	return strings.TrimSpace(s), nil
}

// NonEmpty fails with ErrEmpty on blank input and returns the trimmed value otherwise.
func NonEmpty(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return s, ErrEmpty
	}

	return s, nil
}

// Split returns a transformer that splits on sep, trims every element and
// drops the empty ones.
func Split(sep string) func(string) ([]string, error) {
	return func(s string) ([]string, error) {
		parts := strings.Split(s, sep)
		out := make([]string, 0, len(parts))

		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}

		return out, nil
	}
}

// Int parses a base-10 integer into I, rejecting values that overflow it.
// Underscore digit separators ("1_000") are accepted.
func Int[I Signed](s string) (I, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmpty
	}

	n, err := strconv.ParseInt(strings.ReplaceAll(s, "_", ""), 10, bitSize[I]())
	if err != nil {
		return 0, err
	}

	return I(n), nil
}

// Uint parses a base-10 unsigned integer into U.
func Uint[U Unsigned](s string) (U, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmpty
	}

	n, err := strconv.ParseUint(strings.ReplaceAll(s, "_", ""), 10, bitSize[U]())
	if err != nil {
		return 0, err
	}

	return U(n), nil
}

// Float parses a float64. NaN and infinities are rejected.
func Float(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmpty
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s", ErrOutOfRange, s)
	}

	return f, nil
}

// Bool parses everything strconv.ParseBool does plus yes/no, y/n and on/off,
// case-insensitively.
func Bool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return false, ErrEmpty
	case "yes", "y", "on":
		return true, nil
	case "no", "n", "off":
		return false, nil
	}

	return strconv.ParseBool(strings.TrimSpace(s))
}

// Duration parses a Go duration string ("1.5s", "250ms"). A bare integer is
// read as whole milliseconds.
func Duration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmpty
	}

	if ms, err := Int[int64](s); err == nil {
		return Millis(ms), nil
	}

	return time.ParseDuration(s)
}

// Millis converts whole milliseconds into a time.Duration.
func Millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// Port parses a TCP/UDP port number (0-65535).
func Port(s string) (uint16, error) {
	n, err := Int[int64](s)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBadPort, err)
	}

	if n < 0 || n > portMax {
		return 0, fmt.Errorf("%w: %d", ErrBadPort, n)
	}

	return uint16(n), nil
}

// OneOf returns a transformer that accepts only the given choices.
func OneOf[A comparable](choices ...A) func(A) (A, error) { //nolint:ireturn
	return func(value A) (A, error) {
		if slices.Contains(choices, value) {
			return value, nil
		}

		return value, fmt.Errorf("%w: %v (want one of %v)", ErrInvalidChoice, value, choices)
	}
}

// Positive fails with ErrNonPositive for values <= 0.
func Positive[A Numeric](value A) (A, error) { //nolint:ireturn
	if value <= 0 {
		return value, ErrNonPositive
	}

	return value, nil
}

// IntOr parses s as an int, falling back to def on any error.
func IntOr(s string, def int) int {
	return or(Int[int], s, def)
}

// FloatOr parses s as a float64, falling back to def on any error.
func FloatOr(s string, def float64) float64 {
	return or(Float, s, def)
}

// BoolOr parses s as a bool, falling back to def on any error.
func BoolOr(s string, def bool) bool {
	return or(Bool, s, def)
}

// DurationOr parses s as a duration, falling back to def on any error.
func DurationOr(s string, def time.Duration) time.Duration {
	return or(Duration, s, def)
}

func bitSize[N Signed | Unsigned]() int {
	var n N

	return int(unsafe.Sizeof(n)) * 8 //nolint:mnd
}

func or[T any](f func(string) (T, error), s string, def T) T { //nolint:ireturn
	v, err := f(s)
	if err != nil {
		return def
	}

	return v
}
