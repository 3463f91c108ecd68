package retry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess   = "success"
	outcomeExhausted = "exhausted"
	outcomeCanceled  = "canceled"
)

var (
	attemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "retry_attempts_total",
		Help: "Attempts made by retry loops, first attempts included",
	}, []string{"name"})

	outcomes = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "retry_outcomes_total",
		Help: "How retry loops ended (success, exhausted, canceled)",
	}, []string{"name", "outcome"})
)
