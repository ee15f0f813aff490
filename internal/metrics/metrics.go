// Package metrics exposes Prometheus counters for the relay protocol layers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SessionCreations counts relay session-creation sequences by result.
	// Coalesced callers share one creation, so this also measures how well
	// coalescing works under concurrency.
	SessionCreations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vkrelay_session_creations_total",
		Help: "Relay session creation sequences, by result.",
	}, []string{"result"})

	// SignaturesIssued counts request signatures produced.
	SignaturesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vkrelay_signatures_issued_total",
		Help: "HTTP request signatures produced.",
	})

	// RefreshAttempts counts signing-session refresh attempts by result
	// (ok, unavailable, failed).
	RefreshAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vkrelay_refresh_attempts_total",
		Help: "Signing session refresh attempts, by result.",
	}, []string{"result"})

	// EnvelopesRejected counts inbound WebSocket envelopes dropped before
	// delivery, by reason (replay, signature).
	EnvelopesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vkrelay_ws_envelopes_rejected_total",
		Help: "Inbound WebSocket envelopes rejected, by reason.",
	}, []string{"reason"})
)
