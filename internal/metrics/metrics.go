package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "airtech_http_requests_total",
		Help: "HTTP requests by method, route and status code",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "airtech_http_request_duration_seconds",
		Help:    "HTTP request latency by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "airtech_bookings_created_total",
		Help: "Bookings written",
	})

	SeatClaimConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "airtech_seat_claim_conflicts_total",
		Help: "Seat claims rejected because the seat was no longer free",
	})

	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "airtech_notifications_sent_total",
		Help: "Notification e-mails by event type and outcome",
	}, []string{"type", "outcome"})

	RemindersQueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "airtech_travel_reminders_queued_total",
		Help: "Next-day travel reminders published",
	})
)
