package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "maqraa",
			Name:      "booking_created_total",
			Help:      "Count of reservations created by mode.",
		},
		[]string{"mode"},
	)

	bookingConflict = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "maqraa",
			Name:      "booking_conflict_total",
			Help:      "Count of submissions that lost a slot race by mode.",
		},
		[]string{"mode"},
	)

	feedApplied = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "maqraa",
			Name:      "feed_events_applied_total",
			Help:      "Count of insert notifications applied to the availability cache.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "maqraa",
			Name:      "http_requests_total",
			Help:      "Count of API requests by endpoint.",
		},
		[]string{"endpoint"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, bookingConflict, feedApplied, httpRequests)
	})
}

func IncBookingCreated(mode string) {
	bookingCreated.WithLabelValues(mode).Inc()
}

func IncBookingConflict(mode string) {
	bookingConflict.WithLabelValues(mode).Inc()
}

func IncFeedApplied() {
	feedApplied.Inc()
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}
