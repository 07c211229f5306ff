package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	// Business metrics
	registrationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clubhouse_registrations_total",
			Help: "Total number of user registrations",
		},
	)

	loginsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clubhouse_logins_total",
			Help: "Total number of successful logins",
		},
	)

	loginsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clubhouse_logins_failed_total",
			Help: "Total number of failed login attempts",
		},
	)

	messagesPostedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clubhouse_messages_posted_total",
			Help: "Total number of messages posted",
		},
	)

	messagesDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clubhouse_messages_deleted_total",
			Help: "Total number of messages deleted by admins",
		},
	)
)

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

// RecordRegistration increments the registration counter
func RecordRegistration() {
	registrationsTotal.Inc()
}

// RecordLogin increments the successful login counter
func RecordLogin() {
	loginsTotal.Inc()
}

// RecordLoginFailed increments the failed login counter
func RecordLoginFailed() {
	loginsFailed.Inc()
}

// RecordMessagePosted increments the posted message counter
func RecordMessagePosted() {
	messagesPostedTotal.Inc()
}

// RecordMessageDeleted increments the deleted message counter
func RecordMessageDeleted() {
	messagesDeletedTotal.Inc()
}

// Handler returns the Prometheus metrics handler
func Handler() http.Handler {
	return promhttp.Handler()
}
