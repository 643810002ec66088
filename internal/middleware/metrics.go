package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Decision labels.
const (
	decisionAccept  = "accept"
	decisionReject  = "reject"
	decisionForward = "forward"
	decisionAbort   = "abort"
)

var (
	decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "handoff",
		Subsystem: "auth",
		Name:      "decisions_total",
		Help:      "Credential-check decisions by link and outcome.",
	}, []string{"link", "decision"})

	// ThrottleAborts counts checks the throttling link stopped with a fatal
	// error.
	ThrottleAborts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "handoff",
		Name:      "throttle_aborts_total",
		Help:      "Checks stopped by the throttling link's fatal signal.",
	})
)
