// Package progress tracks how far along a long-running job is.
//
// Each Reporter owns its own counter; there is no package-level state.
// Reporters are safe for concurrent use.
package progress

import (
	"context"
	"time"

	"github.com/amp-labs/amp-kit/logger"
	"go.uber.org/atomic"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Reporter counts processed items against an optional total.
type Reporter struct {
	name    string
	total   int64
	every   int64
	start   time.Time
	count   *atomic.Int64
	printer *message.Printer
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithEvery logs a progress line each time the count crosses a multiple of n.
// Zero (the default) disables periodic logging.
func WithEvery(n int64) Option {
	return func(r *Reporter) {
		r.every = max(n, 0)
	}
}

// WithLanguage sets the locale used to format numbers. The default is English.
func WithLanguage(tag language.Tag) Option {
	return func(r *Reporter) {
		r.printer = message.NewPrinter(tag)
	}
}

// New creates a Reporter. A total of zero or less means the total is unknown.
func New(name string, total int64, opts ...Option) *Reporter {
	r := &Reporter{
		name:    name,
		total:   max(total, 0),
		start:   time.Now(),
		count:   atomic.NewInt64(0),
		printer: message.NewPrinter(language.English),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Add records n more processed items and returns the new count.
func (r *Reporter) Add(ctx context.Context, n int64) int64 {
	if n <= 0 {
		return r.count.Load()
	}

	after := r.count.Add(n)
	itemsTotal.WithLabelValues(r.name).Add(float64(n))

	if r.every > 0 && (after-n)/r.every != after/r.every {
		logger.Get(ctx).Info("progress",
			"name", r.name, "progress", r.String(), "elapsed", time.Since(r.start).Round(time.Millisecond))
	}

	return after
}

// Inc records one processed item.
func (r *Reporter) Inc(ctx context.Context) int64 {
	return r.Add(ctx, 1)
}

// Count is the number of items processed so far.
func (r *Reporter) Count() int64 {
	return r.count.Load()
}

// Total is the expected number of items, or 0 if unknown.
func (r *Reporter) Total() int64 {
	return r.total
}

// Fraction is Count/Total capped at 1, or 0 when the total is unknown.
func (r *Reporter) Fraction() float64 {
	if r.total == 0 {
		return 0
	}

	return min(float64(r.count.Load())/float64(r.total), 1)
}

// String renders the progress, e.g. "1,234 / 10,000 (12.3%)", or just the
// count when the total is unknown.
func (r *Reporter) String() string {
	count := r.count.Load()

	if r.total == 0 {
		return r.printer.Sprintf("%d", count)
	}

	return r.printer.Sprintf("%d / %d (%.1f%%)", count, r.total, r.Fraction()*100) //nolint:mnd
}

// Done logs a final summary.
func (r *Reporter) Done(ctx context.Context) {
	logger.Get(ctx).Info("done",
		"name", r.name, "progress", r.String(), "elapsed", time.Since(r.start).Round(time.Millisecond))
}
