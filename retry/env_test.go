package retry

import (
	"testing"
	"time"

	"github.com/amp-labs/amp-kit/envutil"
	"github.com/amp-labs/amp-kit/parse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsFromEnv_Unset(t *testing.T) {
	t.Parallel()

	opts, err := OptionsFromEnv(t.Context(), "KIT_TEST_RETRY_UNSET")

	require.NoError(t, err)
	assert.Empty(t, opts)
}

func TestOptionsFromEnv(t *testing.T) {
	t.Parallel()

	ctx := envutil.WithEnvOverrides(t.Context(), map[string]string{
		"FETCH_ATTEMPTS":       "5",
		"FETCH_BACKOFF_BASE":   "10ms",
		"FETCH_BACKOFF_MAX":    "40",
		"FETCH_BACKOFF_FACTOR": "3",
		"FETCH_JITTER":         "0.5",
	})

	opts, err := OptionsFromEnv(ctx, "FETCH")
	require.NoError(t, err)
	require.Len(t, opts, 3)

	o := newOptions(opts)
	assert.Equal(t, Attempts(5), o.attempts)
	assert.Equal(t, ExpBackoff{Base: 10 * time.Millisecond, Max: 40 * time.Millisecond, Factor: 3}, o.backoff)
	assert.Equal(t, EqualJitter, o.jitter)
}

func TestOptionsFromEnv_BackoffDefaults(t *testing.T) {
	t.Parallel()

	ctx := envutil.WithEnvOverride(t.Context(), "SYNC_BACKOFF_BASE", "100")

	opts, err := OptionsFromEnv(ctx, "SYNC")
	require.NoError(t, err)

	o := newOptions(opts)
	assert.Equal(t, ExpBackoff{Base: 100 * time.Millisecond, Max: 3 * time.Second, Factor: 2}, o.backoff)
	assert.Equal(t, DefaultAttempts, o.attempts)
}

func TestOptionsFromEnv_Errors(t *testing.T) {
	t.Parallel()

	ctx := envutil.WithEnvOverrides(t.Context(), map[string]string{
		"BAD_ATTEMPTS":     "many",
		"BAD_BACKOFF_BASE": "-5ms",
		"BAD_JITTER":       "lots",
	})

	opts, err := OptionsFromEnv(ctx, "BAD")

	require.Error(t, err)
	assert.Nil(t, opts)
	require.ErrorIs(t, err, envutil.ErrBadEnvVar)
	require.ErrorIs(t, err, parse.ErrNonPositive)
	assert.Contains(t, err.Error(), "BAD_ATTEMPTS")
	assert.Contains(t, err.Error(), "BAD_JITTER")
}

func TestOptionsFromEnv_BackoffWithoutBase(t *testing.T) {
	t.Parallel()

	ctx := envutil.WithEnvOverride(t.Context(), "ORPHAN_BACKOFF_MAX", "5s")

	opts, err := OptionsFromEnv(ctx, "ORPHAN")
	require.ErrorIs(t, err, ErrBackoffWithoutBase)
	assert.Contains(t, err.Error(), "ORPHAN_BACKOFF_MAX")
	assert.Nil(t, opts)

	ctx = envutil.WithEnvOverrides(t.Context(), map[string]string{
		"STRAY_BACKOFF_FACTOR": "3",
		"STRAY_ATTEMPTS":       "4",
	})

	_, err = OptionsFromEnv(ctx, "STRAY")
	require.ErrorIs(t, err, ErrBackoffWithoutBase)
	assert.Contains(t, err.Error(), "STRAY_BACKOFF_FACTOR")
}
