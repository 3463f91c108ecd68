package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromPanic(t *testing.T) {
	t.Parallel()

	t.Run("nil value", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, FromPanic(nil, nil))
	})

	t.Run("error value keeps chain", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("boom") //nolint:err113 // Test error
		err := FromPanic(cause, nil)

		require.ErrorIs(t, err, ErrPanicRecovery)
		require.ErrorIs(t, err, cause)
	})

	t.Run("non-error value is formatted", func(t *testing.T) {
		t.Parallel()

		err := FromPanic(42, nil)

		require.ErrorIs(t, err, ErrPanicRecovery)
		assert.Contains(t, err.Error(), "42")
	})

	t.Run("stack is appended", func(t *testing.T) {
		t.Parallel()

		err := FromPanic("oops", []byte("goroutine 1 [running]"))

		require.ErrorIs(t, err, ErrPanicRecovery)
		assert.Contains(t, err.Error(), "stack trace:\ngoroutine 1 [running]")
	})
}

func TestCollection(t *testing.T) {
	t.Parallel()

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		c := &Collection{}

		assert.False(t, c.HasError())
		assert.Zero(t, c.Len())
		assert.NoError(t, c.GetError())
	})

	t.Run("ignores nil", func(t *testing.T) {
		t.Parallel()

		c := &Collection{}
		c.Add(nil)

		assert.False(t, c.HasError())
	})

	t.Run("single error is returned as is", func(t *testing.T) {
		t.Parallel()

		only := errors.New("only") //nolint:err113 // Test error

		c := &Collection{}
		c.Add(only)

		assert.Same(t, only, c.GetError())
	})

	t.Run("many errors are joined", func(t *testing.T) {
		t.Parallel()

		first := errors.New("first")   //nolint:err113 // Test error
		cause := errors.New("timeout") //nolint:err113 // Test error

		c := &Collection{}
		c.Add(first)
		c.Addf("second: %w", cause)

		err := c.GetError()

		assert.Equal(t, 2, c.Len())
		require.ErrorIs(t, err, first)
		require.ErrorIs(t, err, cause)
		assert.Equal(t, fmt.Sprintf("first\nsecond: %v", cause), err.Error())
	})
}
