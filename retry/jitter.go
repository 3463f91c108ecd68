package retry

import (
	"math/rand/v2"
	"time"
)

// Jitter is the share of a backoff delay that is randomized. Spreading the
// delays keeps many clients that failed together from retrying together.
//   - negative or 0.0: the delay is used as is
//   - 0.5: half fixed, half random
//   - 1.0: uniformly random between 0 and the delay
//
// Values above 1.0 act as 1.0. Jitter has no effect without a Backoff.
//
// Example:
//
//	runner := retry.NewRunner(
//	    retry.WithBackoff(retry.ConstantBackoff(time.Second)),
//	    retry.WithJitter(retry.Jitter(0.25)), // 750ms to 1s
//	)
type Jitter float64

const (
	// EqualJitter: delay/2 + random(0, delay/2).
	EqualJitter Jitter = 0.5

	// FullJitter: random(0, delay).
	FullJitter Jitter = 1.0

	// WithoutJitter keeps delays deterministic. It is the default.
	WithoutJitter Jitter = -1.0
)

// jitter randomizes d according to j.
func (j Jitter) jitter(d time.Duration) time.Duration {
	if j <= 0.0 || d <= 0 {
		return d
	}

	if j > 1.0 {
		j = 1.0
	}

	//nolint:gosec // G404: math/rand is sufficient for jitter
	r := rand.Float64() * float64(d)

	// jitter * random + (1 - jitter) * delay
	return time.Duration(float64(j)*r + float64(1.0-j)*float64(d))
}
