package retry

import (
	"context"
	"errors"
	"time"

	kiterrors "github.com/amp-labs/amp-kit/errors"
	"github.com/amp-labs/amp-kit/envutil"
	"github.com/amp-labs/amp-kit/parse"
)

// ErrBackoffWithoutBase is reported when a backoff cap or factor is configured
// but the base delay that enables backoff is not.
var ErrBackoffWithoutBase = errors.New("backoff setting needs a base delay")

// OptionsFromEnv reads retry settings from the environment. Every variable is
// optional; only the ones that are set produce options.
//
//	<PREFIX>_ATTEMPTS        total attempts
//	<PREFIX>_BACKOFF_BASE    first delay, enables exponential backoff
//	<PREFIX>_BACKOFF_MAX     delay cap (default: 30 times the base)
//	<PREFIX>_BACKOFF_FACTOR  growth factor (default 2)
//	<PREFIX>_JITTER          0.0 to 1.0
//
// Durations accept Go syntax ("250ms") or bare milliseconds. Setting
// _BACKOFF_MAX or _BACKOFF_FACTOR without _BACKOFF_BASE is an error
// (ErrBackoffWithoutBase). All problems are reported together.
//
// Example:
//
//	opts, err := retry.OptionsFromEnv(ctx, "BILLING_RETRY")
//	if err != nil {
//	    return err
//	}
//	runner := retry.NewRunner(append(opts, retry.WithName("billing"))...)
func OptionsFromEnv(ctx context.Context, prefix string) ([]Option, error) {
	var (
		opts []Option
		errs kiterrors.Collection
	)

	envutil.Uint[uint](ctx, prefix+"_ATTEMPTS").Use(&errs, func(n uint) {
		opts = append(opts, WithAttempts(Attempts(n)))
	})

	maxKey, factorKey := prefix+"_BACKOFF_MAX", prefix+"_BACKOFF_FACTOR"
	maxDelay := envutil.Duration(ctx, maxKey).Map(parse.Positive[time.Duration])
	factor := envutil.Float64(ctx, factorKey).Map(parse.Positive[float64])

	base := envutil.Duration(ctx, prefix+"_BACKOFF_BASE").Map(parse.Positive[time.Duration])
	base.Use(&errs, func(base time.Duration) {
		backoff := ExpBackoff{Base: base, Max: base * 30, Factor: 2} //nolint:mnd

		maxDelay.Use(&errs, func(d time.Duration) { backoff.Max = d })
		factor.Use(&errs, func(f float64) { backoff.Factor = f })

		opts = append(opts, WithBackoff(backoff))
	})

	if !base.HasValue() && !base.HasError() {
		if maxDelay.HasValue() || maxDelay.HasError() {
			errs.Addf("%s: %w", maxKey, ErrBackoffWithoutBase)
		}

		if factor.HasValue() || factor.HasError() {
			errs.Addf("%s: %w", factorKey, ErrBackoffWithoutBase)
		}
	}

	envutil.Float64(ctx, prefix+"_JITTER").Use(&errs, func(j float64) {
		opts = append(opts, WithJitter(Jitter(j)))
	})

	if errs.HasError() {
		return nil, errs.GetError()
	}

	return opts, nil
}
