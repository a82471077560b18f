package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hotelbook"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "Booking admission attempts by result.",
		},
		[]string{"result"},
	)

	lockAcquire = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lock_acquire_total",
			Help:      "Room lease acquisition attempts by result.",
		},
		[]string{"result"},
	)

	lockFailOpen = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lock_fail_open_total",
			Help:      "Lease operations that proceeded because the shared store failed.",
		},
		[]string{"op"},
	)

	cacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Booking cache lookups by result.",
		},
		[]string{"result"},
	)

	eventDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_deliveries_total",
			Help:      "Booking event deliveries to the external sink by result.",
		},
		[]string{"result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookings, lockAcquire, lockFailOpen, cacheRequests, eventDeliveries)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncBooking records a create-booking outcome (created, conflict, busy, invalid, error).
func IncBooking(result string) {
	bookings.WithLabelValues(result).Inc()
}

func IncLockAcquire(acquired bool) {
	result := "acquired"
	if !acquired {
		result = "busy"
	}
	lockAcquire.WithLabelValues(result).Inc()
}

func IncLockFailOpen(op string) {
	lockFailOpen.WithLabelValues(op).Inc()
}

// IncCache records a cache lookup as hit, miss or error.
func IncCache(result string) {
	cacheRequests.WithLabelValues(result).Inc()
}

func IncEventDelivery(result string) {
	eventDeliveries.WithLabelValues(result).Inc()
}
