// Package metrics declares the Prometheus collectors exported by the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ReservationRequests counts reservation attempts by outcome
	// (created, event_full, duplicate, invalid_event_state, not_found, error).
	ReservationRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservation_requests_total",
			Help: "Total number of reservation requests by outcome",
		},
		[]string{"outcome"},
	)

	// ReservationTransitions counts applied status changes.
	ReservationTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservation_transitions_total",
			Help: "Total number of reservation status transitions",
		},
		[]string{"from", "to"},
	)

	// LedgerAdjustments counts seat-count changes by direction (increment, decrement).
	LedgerAdjustments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_adjustments_total",
			Help: "Total number of seat ledger adjustments",
		},
		[]string{"direction"},
	)

	// LedgerViolations counts rejected adjustments. Any non-zero value is a bug.
	LedgerViolations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_violations_total",
			Help: "Total number of seat adjustments rejected by the capacity guard",
		},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)

// Register registers all collectors with reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		ReservationRequests,
		ReservationTransitions,
		LedgerAdjustments,
		LedgerViolations,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}
