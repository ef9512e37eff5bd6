// Package metrics holds the Prometheus collectors of the API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobboard_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jobboard_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	WebhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobboard_webhook_events_total",
			Help: "Identity provider webhook deliveries by event type and outcome",
		},
		[]string{"type", "outcome"},
	)
	Applications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobboard_applications_total",
			Help: "Job application changes by action",
		},
		[]string{"action"},
	)
)

// Webhook outcomes.
const (
	OutcomeProcessed = "processed"
	OutcomeDuplicate = "duplicate"
	OutcomeIgnored   = "ignored"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// Application actions.
const (
	ActionApplied      = "applied"
	ActionWithdrawn    = "withdrawn"
	ActionStatusChange = "status_changed"
)

// Register adds every collector to reg.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{HTTPRequests, HTTPDuration, WebhookEvents, Applications} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
