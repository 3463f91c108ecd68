package progress

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/amp-labs/amp-kit/logger"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestReporter_Counts(t *testing.T) {
	t.Parallel()

	r := New("test-counts", 10_000)

	assert.Equal(t, int64(1), r.Inc(t.Context()))
	assert.Equal(t, int64(1234), r.Add(t.Context(), 1233))
	assert.Equal(t, int64(1234), r.Add(t.Context(), -5))

	assert.Equal(t, int64(1234), r.Count())
	assert.Equal(t, int64(10_000), r.Total())
	assert.InDelta(t, 0.1234, r.Fraction(), 1e-9)
	assert.Equal(t, "1,234 / 10,000 (12.3%)", r.String())
}

func TestReporter_UnknownTotal(t *testing.T) {
	t.Parallel()

	r := New("test-unknown", 0)
	r.Add(t.Context(), 1_500_000)

	assert.Zero(t, r.Fraction())
	assert.Equal(t, "1,500,000", r.String())
}

func TestReporter_FractionIsCapped(t *testing.T) {
	t.Parallel()

	r := New("test-capped", 10)
	r.Add(t.Context(), 15)

	assert.InDelta(t, 1.0, r.Fraction(), 0)
	assert.Equal(t, "15 / 10 (100.0%)", r.String())
}

func TestReporter_Language(t *testing.T) {
	t.Parallel()

	r := New("test-german", 0, WithLanguage(language.German))
	r.Add(t.Context(), 1234)

	assert.Equal(t, "1.234", r.String())
}

func TestReporter_Concurrent(t *testing.T) {
	t.Parallel()

	const name = "test-concurrent"

	r := New(name, 800)

	var wg sync.WaitGroup

	for range 8 {
		wg.Go(func() {
			for range 100 {
				r.Inc(t.Context())
			}
		})
	}

	wg.Wait()

	assert.Equal(t, int64(800), r.Count())
	assert.InDelta(t, 800, testutil.ToFloat64(itemsTotal.WithLabelValues(name)), 0)
}

func TestReporter_LogsEvery(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ctx := logger.WithLogger(t.Context(), slog.New(slog.NewTextHandler(&buf, nil)))

	r := New("test-every", 100, WithEvery(10))

	r.Add(ctx, 9)  // 9: no line
	r.Add(ctx, 1)  // 10: line
	r.Add(ctx, 25) // 35: crosses 20 and 30, one line
	r.Add(ctx, 4)  // 39: no line
	r.Done(ctx)

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "msg=progress"))
	assert.Equal(t, 1, strings.Count(out, "msg=done"))
	assert.Contains(t, out, `progress="39 / 100 (39.0%)"`)
}
