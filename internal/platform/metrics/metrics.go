package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	UsersCreated          prometheus.Counter
	ValidationFailures    *prometheus.CounterVec
	RegistrationDuration  prometheus.Histogram
	NotificationsSent     prometheus.Counter
	NotificationFailures  prometheus.Counter
	NotificationsDropped  prometheus.Counter
	RateLimitedRequests   prometheus.Counter
	RequestLatencySeconds *prometheus.HistogramVec
}

// New creates and registers all metrics on reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not collide.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UsersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "signup_users_created_total",
			Help: "Total number of accounts created",
		}),
		ValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "signup_validation_failures_total",
			Help: "Rejected registrations by failing field",
		}, []string{"field"}),
		RegistrationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "signup_registration_duration_seconds",
			Help:    "Duration of the registration workflow including password hashing",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		NotificationsSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "signup_notifications_sent_total",
			Help: "Activation emails handed to the transport",
		}),
		NotificationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "signup_notification_failures_total",
			Help: "Activation emails the transport rejected",
		}),
		NotificationsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "signup_notifications_dropped_total",
			Help: "Activation emails dropped because the dispatch queue was full or closed",
		}),
		RateLimitedRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "signup_rate_limited_requests_total",
			Help: "Signup requests rejected by the per-IP rate limit",
		}),
		RequestLatencySeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "signup_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// IncrementUsersCreated increments the users created counter by 1.
func (m *Metrics) IncrementUsersCreated() {
	m.UsersCreated.Inc()
}

func (m *Metrics) IncrementValidationFailure(field string) {
	m.ValidationFailures.WithLabelValues(field).Inc()
}

// ObserveRegistration records the workflow duration since start.
func (m *Metrics) ObserveRegistration(start time.Time) {
	m.RegistrationDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementNotificationsSent() {
	m.NotificationsSent.Inc()
}

func (m *Metrics) IncrementNotificationFailures() {
	m.NotificationFailures.Inc()
}

func (m *Metrics) IncrementNotificationsDropped() {
	m.NotificationsDropped.Inc()
}

func (m *Metrics) IncrementRateLimited() {
	m.RateLimitedRequests.Inc()
}

func (m *Metrics) ObserveRequest(method, route, status string, start time.Time) {
	m.RequestLatencySeconds.WithLabelValues(method, route, status).Observe(time.Since(start).Seconds())
}
