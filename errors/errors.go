// Package errors holds the sentinel errors shared across amp-kit along with a
// couple of small helpers for building errors out of recovered panics and for
// accumulating several failures into one.
package errors

import (
	"errors"
	"fmt"
)

// ErrPanicRecovery marks an error that was produced from a recovered panic.
var ErrPanicRecovery = errors.New("recovered from panic")

// FromPanic converts a value returned by recover() into an error. A nil value
// yields a nil error. Error values are wrapped so that errors.Is keeps working
// against the original, anything else is formatted with %v. When stack is
// non-nil it is appended to the message.
func FromPanic(value any, stack []byte) error {
	if value == nil {
		return nil
	}

	var err error

	if valueErr, ok := value.(error); ok {
		err = fmt.Errorf("%w: %w", ErrPanicRecovery, valueErr)
	} else {
		err = fmt.Errorf("%w: %v", ErrPanicRecovery, value)
	}

	if len(stack) == 0 {
		return err
	}

	return fmt.Errorf("%w\nstack trace:\n%s", err, stack)
}

// Collection accumulates errors. It is not safe for concurrent use.
type Collection struct {
	errors []error
}

// Add appends err to the collection. Nil errors are ignored.
func (c *Collection) Add(err error) {
	if err != nil {
		c.errors = append(c.errors, err)
	}
}

// Addf appends a formatted error. The format may use %w.
func (c *Collection) Addf(format string, args ...any) {
	c.errors = append(c.errors, fmt.Errorf(format, args...)) //nolint:err113
}

// Len returns the number of collected errors.
func (c *Collection) Len() int {
	return len(c.errors)
}

// HasError reports whether anything has been collected.
func (c *Collection) HasError() bool {
	return len(c.errors) > 0
}

// GetError returns nil for an empty collection, the error itself when there is
// exactly one, and an errors.Join of everything otherwise.
func (c *Collection) GetError() error {
	switch len(c.errors) {
	case 0:
		return nil
	case 1:
		return c.errors[0]
	default:
		return errors.Join(c.errors...)
	}
}
