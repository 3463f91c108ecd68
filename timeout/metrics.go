package timeout

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess  = "success"
	outcomeFailure  = "failure"
	outcomeTimeout  = "timeout"
	outcomeCanceled = "canceled"
	outcomeRejected = "rejected"
)

var (
	calls = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "timeout_calls_total",
		Help: "Timeout-bounded calls by outcome (success, failure, timeout, canceled, rejected)",
	}, []string{"name", "outcome"})

	callDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{ //nolint:gochecknoglobals
		Name:    "timeout_call_duration_seconds",
		Help:    "How long callers waited on timeout-bounded calls",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10), //nolint:mnd
	}, []string{"name"})

	abandonedWork = promauto.NewGaugeVec(prometheus.GaugeOpts{ //nolint:gochecknoglobals
		Name: "timeout_abandoned_work",
		Help: "Work still running after its caller gave up on it",
	}, []string{"name"})
)
