package timeout_test

import (
	"context"
	"testing"
	"time"

	"github.com/amp-labs/amp-kit/internal/testutils"
	"github.com/amp-labs/amp-kit/retry"
	"github.com/amp-labs/amp-kit/timeout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func TestRetryInsideTimeout_BoundsWallTime(t *testing.T) {
	t.Parallel()

	calls := atomic.NewInt64(0)

	var err error

	took := testutils.AssertWithin(t, 500*time.Millisecond, func() {
		err = timeout.Do(t.Context(), 100*time.Millisecond, func(ctx context.Context) error {
			return retry.Do(ctx, func(ctx context.Context) error {
				calls.Inc()
				time.Sleep(60 * time.Millisecond)

				return testutils.ErrInjected
			}, retry.WithAttempts(10))
		})
	})

	require.ErrorIs(t, err, timeout.ErrTimeout)
	assert.GreaterOrEqual(t, took, 100*time.Millisecond)

	// The loop notices the expired context before its next attempt.
	assert.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int64(2), calls.Load())
}

func TestRetryInsideTimeout_SucceedsInTime(t *testing.T) {
	t.Parallel()

	work, calls := testutils.Flaky(2, "ok")

	got, err := timeout.Call(t.Context(), time.Second, retry.Retrying(work))

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, int64(3), calls.Load())
}

func TestTimeoutInsideRetry(t *testing.T) {
	t.Parallel()

	calls := atomic.NewInt64(0)

	got, err := retry.DoValue(t.Context(), func(ctx context.Context) (string, error) {
		return timeout.Call(ctx, 20*time.Millisecond, func(ctx context.Context) (string, error) {
			if calls.Inc() == 1 {
				<-ctx.Done()

				return "", ctx.Err()
			}

			return "second try", nil
		})
	})

	require.NoError(t, err)
	assert.Equal(t, "second try", got)
	assert.Equal(t, int64(2), calls.Load())
}

func TestTimeoutInsideRetry_AllAttemptsTimeOut(t *testing.T) {
	t.Parallel()

	_, err := retry.DoValue(t.Context(), func(ctx context.Context) (int, error) {
		return timeout.Call(ctx, 10*time.Millisecond, testutils.Cooperative[int]())
	})

	var timeoutErr *timeout.Error
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 10*time.Millisecond, timeoutErr.Limit)
}
