package memsync

import "time"

// Metrics defines the interface for tracking sync pipeline operations.
type Metrics interface {
	// RecordEvent records a handled lifecycle event and its processing status.
	RecordEvent(eventType, status string)

	// RecordEventDuration records the end-to-end duration of handling one event.
	RecordEventDuration(eventType string, duration time.Duration)

	// RecordDeliveryAttempt records a single HTTP attempt against the Access API.
	// Status is the HTTP status code as a string, or "transport_error".
	RecordDeliveryAttempt(status string)

	// RecordDeliveryOutcome records the terminal outcome of a delivery sequence.
	RecordDeliveryOutcome(outcome Outcome)

	// RecordDeliveryDuration records the duration of a full delivery sequence,
	// including retry delays.
	RecordDeliveryDuration(duration time.Duration)
}

// NoopMetrics is a no-op implementation of the Metrics interface.
type NoopMetrics struct{}

func (n *NoopMetrics) RecordEvent(eventType, status string)                         {}
func (n *NoopMetrics) RecordEventDuration(eventType string, duration time.Duration) {}
func (n *NoopMetrics) RecordDeliveryAttempt(status string)                          {}
func (n *NoopMetrics) RecordDeliveryOutcome(outcome Outcome)                        {}
func (n *NoopMetrics) RecordDeliveryDuration(duration time.Duration)                {}
