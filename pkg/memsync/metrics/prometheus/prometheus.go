package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Kashif-509/Ulitmatemember-to-Acess/pkg/memsync"
)

// Metrics implements memsync.Metrics using Prometheus.
type Metrics struct {
	eventsTotal           *prometheus.CounterVec
	eventDuration         *prometheus.HistogramVec
	deliveryAttemptsTotal *prometheus.CounterVec
	deliveryOutcomesTotal *prometheus.CounterVec
	deliveryDurationSec   prometheus.Histogram
}

// NewMetrics creates a new Prometheus metrics implementation for the sync pipeline.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "memsync",
			Name:      "events_total",
			Help:      "Total number of membership lifecycle events handled.",
		}, []string{"event_type", "status"}),

		eventDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "memsync",
			Name:      "event_duration_seconds",
			Help:      "End-to-end duration of handling one lifecycle event.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event_type"}),

		deliveryAttemptsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "memsync",
			Name:      "delivery_attempts_total",
			Help:      "Total number of HTTP attempts against the Access API.",
		}, []string{"status"}),

		deliveryOutcomesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "memsync",
			Name:      "delivery_outcomes_total",
			Help:      "Terminal outcomes of delivery attempt sequences.",
		}, []string{"outcome"}),

		deliveryDurationSec: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "memsync",
			Name:      "delivery_duration_seconds",
			Help:      "Duration of full delivery sequences, retry delays included.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) RecordEvent(eventType, status string) {
	m.eventsTotal.WithLabelValues(eventType, status).Inc()
}

func (m *Metrics) RecordEventDuration(eventType string, duration time.Duration) {
	m.eventDuration.WithLabelValues(eventType).Observe(duration.Seconds())
}

func (m *Metrics) RecordDeliveryAttempt(status string) {
	m.deliveryAttemptsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordDeliveryOutcome(outcome memsync.Outcome) {
	m.deliveryOutcomesTotal.WithLabelValues(string(outcome)).Inc()
}

func (m *Metrics) RecordDeliveryDuration(duration time.Duration) {
	m.deliveryDurationSec.Observe(duration.Seconds())
}

// DefaultMetrics returns a Metrics implementation using the default Prometheus registerer.
func DefaultMetrics(namespace string) memsync.Metrics {
	return NewMetrics(prometheus.DefaultRegisterer, namespace)
}
