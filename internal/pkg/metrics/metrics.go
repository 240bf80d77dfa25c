package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rental_ledger"

var (
	once sync.Once

	webhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_events_total",
			Help:      "Processor webhook events by type and outcome.",
		},
		[]string{"type", "outcome"},
	)

	signatureFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_signature_failures_total",
			Help:      "Webhook deliveries rejected for an invalid signature.",
		},
	)

	sweepItems = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_items_total",
			Help:      "Payments processed by scheduler sweeps by step and outcome.",
		},
		[]string{"step", "outcome"},
	)

	sweepDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Duration of a scheduler sweep step.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"step"},
	)

	alertsRaised = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_raised_total",
			Help:      "Ledger alerts raised by kind.",
		},
		[]string{"kind"},
	)

	checkoutSessions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_sessions_total",
			Help:      "Checkout session requests by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(webhookEvents, signatureFailures, sweepItems, sweepDuration, alertsRaised, checkoutSessions)
	})
}

func IncWebhookEvent(eventType, outcome string) {
	webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

func IncSignatureFailure() {
	signatureFailures.Inc()
}

func IncSweepItem(step, outcome string) {
	sweepItems.WithLabelValues(step, outcome).Inc()
}

func ObserveSweep(step string, started time.Time) {
	sweepDuration.WithLabelValues(step).Observe(time.Since(started).Seconds())
}

func IncAlert(kind string) {
	alertsRaised.WithLabelValues(kind).Inc()
}

func IncCheckout(outcome string) {
	checkoutSessions.WithLabelValues(outcome).Inc()
}
