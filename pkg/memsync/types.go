package memsync

import "time"

// SubscriptionType classifies a membership subscription by billing cadence.
type SubscriptionType string

const (
	// SubscriptionYearly indicates an annually billed membership level.
	SubscriptionYearly SubscriptionType = "YEARLY"
	// SubscriptionMonthly indicates a monthly billed membership level.
	SubscriptionMonthly SubscriptionType = "MONTHLY"
	// SubscriptionUnknown indicates the cadence could not be derived from level labels.
	SubscriptionUnknown SubscriptionType = "UNKNOWN"
)

// MemberStatus is the membership standing reported to the Access API.
type MemberStatus string

const (
	// StatusOpen indicates an active membership (at least one level assigned).
	StatusOpen MemberStatus = "OPEN"
	// StatusSuspend indicates a membership with no levels assigned.
	StatusSuspend MemberStatus = "SUSPEND"
)

// Outcome is the terminal result of one delivery attempt sequence.
type Outcome string

const (
	// OutcomeSuccess means the Access API acknowledged the payload with HTTP 200.
	OutcomeSuccess Outcome = "success"
	// OutcomeTransportFailure means a connection-level error ended delivery
	// without retry.
	OutcomeTransportFailure Outcome = "transport_failure"
	// OutcomeExhaustedRetries means every attempt returned a non-200 response.
	OutcomeExhaustedRetries Outcome = "exhausted_retries"
)

// MembershipEvent is a host-produced lifecycle event. It is read-only to this
// module and only lives for the duration of handling one event.
type MembershipEvent struct {
	// UserID is the host's opaque user identifier.
	UserID string

	// MembershipLevelIDs are the user's level identifiers, in host order.
	// Order matters: the classifier honors the first qualifying level.
	MembershipLevelIDs []string
}

// PaymentData is the payload of a payment-completed event. Payment completion
// is observed for logging only; the sync is always triggered by the
// first-activation event to avoid double delivery.
type PaymentData struct {
	Status string
}

// UserRecord is the host-owned user projection fetched at event-handling time.
// It is never cached and may be absent (not-found is a handled outcome).
type UserRecord struct {
	ID        string
	Login     string
	FirstName string
	LastName  string
	Email     string
}

// SyncPayload is the canonical membership record sent to the Access API.
// It is built once per event and never mutated afterwards.
type SyncPayload struct {
	RecordID                 string           `json:"record_identifier"`
	RecordType               string           `json:"record_type"`
	ProgramCustomerID        string           `json:"program_customer_identifier"`
	MemberCustomerID         string           `json:"member_customer_identifier"`
	OrganizationCustomerID   string           `json:"organization_customer_identifier"`
	PreviousMemberCustomerID *string          `json:"previous_member_customer_identifier"`
	MemberStatus             MemberStatus     `json:"member_status"`
	SubscriptionType         SubscriptionType `json:"subscription_type"`
	FullName                 string           `json:"full_name"`
	FirstName                string           `json:"first_name"`
	LastName                 string           `json:"last_name"`
	EmailAddress             string           `json:"email_address"`
}

// SyncRecord is the audit record of the most recent delivery for a user.
// Persisting records is optional and best effort.
type SyncRecord struct {
	UserID    string      `json:"user_id"`
	Payload   SyncPayload `json:"payload"`
	Outcome   Outcome     `json:"outcome"`
	Attempts  int         `json:"attempts"`
	LastError string      `json:"last_error,omitempty"`
	SyncedAt  time.Time   `json:"synced_at"`
}
