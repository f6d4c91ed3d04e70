package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the booking service prometheus metrics. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	BookingsCreated    prometheus.Counter
	BookingsCancelled  prometheus.Counter
	StatusChanges      *prometheus.CounterVec
	AvailabilityChecks *prometheus.CounterVec
	Notifications      *prometheus.CounterVec
	StoreErrors        *prometheus.CounterVec
	RateLimited        prometheus.Counter
}

// New registers the metrics on reg. Pass prometheus.DefaultRegisterer to
// expose them through promhttp.Handler.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		BookingsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "The total number of bookings created",
		}),
		BookingsCancelled: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_cancelled_total",
			Help:      "The total number of guest cancellations",
		}),
		StatusChanges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_status_changes_total",
			Help:      "Booking status changes by target status",
		}, []string{"status"}),
		AvailabilityChecks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_checks_total",
			Help:      "Availability checks by program type and result",
		}, []string{"program", "available"}),
		Notifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Booking notifications by event and outcome",
		}, []string{"event", "outcome"}),
		StoreErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "The total number of persistence errors",
		}, []string{"operation"}),
		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "Requests rejected by the per-IP rate limiter",
		}),
	}
}

func (m *Metrics) BookingCreated() {
	if m != nil {
		m.BookingsCreated.Inc()
	}
}

func (m *Metrics) BookingCancelled() {
	if m != nil {
		m.BookingsCancelled.Inc()
	}
}

func (m *Metrics) StatusChanged(status string) {
	if m != nil {
		m.StatusChanges.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) AvailabilityChecked(program string, available bool) {
	if m == nil {
		return
	}
	result := "false"
	if available {
		result = "true"
	}
	m.AvailabilityChecks.WithLabelValues(program, result).Inc()
}

func (m *Metrics) Notification(event string, err error) {
	if m == nil {
		return
	}
	outcome := "sent"
	if err != nil {
		outcome = "failed"
	}
	m.Notifications.WithLabelValues(event, outcome).Inc()
}

func (m *Metrics) StoreError(operation string) {
	if m != nil {
		m.StoreErrors.WithLabelValues(operation).Inc()
	}
}

func (m *Metrics) RequestRateLimited() {
	if m != nil {
		m.RateLimited.Inc()
	}
}
