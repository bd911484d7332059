// Package metrics declares the Prometheus collectors shared by the booking services.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Flight kinds used as the flight_kind label
const (
	FlightKindPersisted = "persisted"
	FlightKindSynthetic = "synthetic"
)

// Outcomes used as the outcome label of events_processed_total
const (
	OutcomeProcessed    = "processed"
	OutcomeFailed       = "failed"
	OutcomeDeadLettered = "dead_lettered"
)

// Outcomes of one outbox publish attempt
const (
	OutboxPublished = "published"
	OutboxRetried   = "retried"
	OutboxParked    = "parked"
)

var (
	bookingsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Total number of confirmed bookings",
		},
		[]string{"flight_kind"},
	)

	bookingsCancelled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookings_cancelled_total",
			Help: "Total number of cancelled bookings",
		},
	)

	bookingFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_failures_total",
			Help: "Total number of rejected booking operations by reason",
		},
		[]string{"reason"},
	)

	surgePricingApplied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "surge_pricing_applied_total",
			Help: "Total number of price recomputes that left a flight at the surge rate",
		},
	)

	walletOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_operations_total",
			Help: "Total number of wallet ledger movements",
		},
		[]string{"type"},
	)

	eventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_processed_total",
			Help: "Total number of consumed domain events by type and outcome",
		},
		[]string{"event_type", "outcome"},
	)

	outboxMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbox_messages_total",
			Help: "Outbox publish attempts by event type and outcome",
		},
		[]string{"event_type", "outcome"},
	)

	repricedFlights = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "repricer_flights_reset_total",
			Help: "Total number of flights the repricing sweep returned to base price",
		},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2, 5},
		},
		[]string{"method", "route", "status"},
	)
)

func BookingCreated(flightKind string) {
	bookingsCreated.WithLabelValues(flightKind).Inc()
}

func BookingCancelled() {
	bookingsCancelled.Inc()
}

// BookingFailed counts a rejected operation; reason is a shared.FailureReason value
func BookingFailed(reason string) {
	bookingFailures.WithLabelValues(reason).Inc()
}

func SurgePricingApplied() {
	surgePricingApplied.Inc()
}

func WalletOperation(txType string) {
	walletOperations.WithLabelValues(txType).Inc()
}

// EventProcessed counts one consumed event
func EventProcessed(eventType, outcome string) {
	eventsProcessed.WithLabelValues(eventType, outcome).Inc()
}

func OutboxMessage(eventType, outcome string) {
	outboxMessages.WithLabelValues(eventType, outcome).Inc()
}

func FlightsRepriced(n int) {
	repricedFlights.Add(float64(n))
}

// ObserveHTTPRequest records one served request
func ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	httpRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
