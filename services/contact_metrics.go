package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Submission outcomes recorded by ContactMetrics.
const (
	OutcomeSuccess          = "success"
	OutcomeValidationFailed = "validation_failed"
	OutcomeBotRejected      = "bot_rejected"
	OutcomeCooldown         = "cooldown"
	OutcomeDeliveryFailed   = "delivery_failed"
)

// ContactMetrics counts contact form submissions by outcome and tracks how
// long the email provider takes to accept a message.
type ContactMetrics struct {
	submissions     *prometheus.CounterVec
	deliveryLatency prometheus.Histogram
	activeSessions  prometheus.Gauge
}

func NewContactMetrics(reg prometheus.Registerer) *ContactMetrics {
	m := &ContactMetrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Contact form submission attempts by outcome",
		}, []string{"outcome"}),
		deliveryLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "contact_delivery_duration_seconds",
			Help:    "Time taken by the email provider to accept a contact message",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "contact_active_sessions",
			Help: "Visitor sessions currently holding a contact form",
		}),
	}

	reg.MustRegister(m.submissions)
	reg.MustRegister(m.deliveryLatency)
	reg.MustRegister(m.activeSessions)

	return m
}

func (m *ContactMetrics) recordOutcome(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *ContactMetrics) observeDelivery(d time.Duration) {
	if m == nil {
		return
	}
	m.deliveryLatency.Observe(d.Seconds())
}

func (m *ContactMetrics) setActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}
