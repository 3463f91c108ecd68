package retry

import (
	"math"
	"time"
)

// Backoff computes the pause between attempts. Runners make no pause by
// default; pass a Backoff with WithBackoff to opt in.
type Backoff interface {
	// Delay returns how long to wait after the attempt with the given 0-based
	// index failed, before starting the next one.
	Delay(attempt uint) time.Duration
}

// NoBackoff retries immediately. It is the default.
type NoBackoff struct{}

// Delay always returns 0.
func (NoBackoff) Delay(uint) time.Duration {
	return 0
}

// ConstantBackoff waits the same duration before every retry.
//
// Example:
//
//	runner := retry.NewRunner(retry.WithBackoff(retry.ConstantBackoff(250 * time.Millisecond)))
type ConstantBackoff time.Duration

// Delay returns the constant duration regardless of the attempt.
func (c ConstantBackoff) Delay(uint) time.Duration {
	return time.Duration(c)
}

// ExpBackoff grows the delay geometrically with each failed attempt.
//
// Example:
//
//	backoff := retry.ExpBackoff{
//	    Base:   100 * time.Millisecond, // first pause
//	    Max:    10 * time.Second,       // never wait longer than this
//	    Factor: 2.0,                    // double each time
//	}
//	// Delays: 100ms, 200ms, 400ms, 800ms, 1.6s, 3.2s, 6.4s, 10s, 10s, ...
type ExpBackoff struct {
	// Base is the delay after the first failure, and the lower bound for all
	// delays.
	Base time.Duration
	// Max caps the delay.
	Max time.Duration
	// Factor multiplies the delay after each failure. Values below 1 would
	// shrink it; the result is then held at Base.
	Factor float64
}

// Delay returns Base * Factor^attempt, clamped to [Base, Max].
func (b ExpBackoff) Delay(attempt uint) time.Duration {
	f := float64(b.Base) * math.Pow(b.Factor, float64(attempt))

	switch {
	case math.IsNaN(f) || f < float64(b.Base):
		return b.Base
	case f > float64(b.Max):
		return b.Max
	default:
		return time.Duration(f)
	}
}
