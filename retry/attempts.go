package retry

import "context"

// DefaultAttempts is the total number of attempts made when no attempt
// option is given: the first call plus two retries.
const DefaultAttempts Attempts = 3

// Attempts is the total number of times the work may be called, counting the
// first call. Values below 1 are treated as 1; the work always runs once.
type Attempts uint

type ctxKey string

const attemptKey ctxKey = "attempt"

func withAttempt(ctx context.Context, attempt uint) context.Context {
	return context.WithValue(ctx, attemptKey, attempt)
}

// Attempt returns the 0-based index of the attempt running under ctx, or 0
// outside of a retry loop.
//
// Example:
//
//	err := retry.Do(ctx, func(ctx context.Context) error {
//	    if retry.Attempt(ctx) > 0 {
//	        refreshToken(ctx)
//	    }
//	    return makeAPICall(ctx)
//	})
func Attempt(ctx context.Context) uint {
	attemptNum, ok := ctx.Value(attemptKey).(uint)
	if !ok {
		return 0
	}

	return attemptNum
}
