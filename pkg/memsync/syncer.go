package memsync

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	eventFirstActivation  = "first_activation"
	eventPaymentCompleted = "payment_completed"
)

// Listener receives membership lifecycle events from the host. The host is
// expected to call these fire-and-forget: implementations absorb failures and
// surface them only through logs, metrics, and the record store.
type Listener interface {
	// OnFirstActivation handles a user's first paid activation, the sole
	// trigger for delivery.
	OnFirstActivation(ctx context.Context, event MembershipEvent) error

	// OnPaymentCompleted observes a completed payment. No delivery happens
	// here: a completion implies a first-activation event will follow, and
	// syncing on both would double-deliver.
	OnPaymentCompleted(ctx context.Context, payment PaymentData) error
}

// Syncer is the event-triggered sync pipeline: intake, classification,
// mapping, and delivery, in sequence, within the caller's goroutine.
type Syncer struct {
	config Config
	client *Client
}

// NewSyncer creates the pipeline from a validated config.
func NewSyncer(config Config) (*Syncer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config = config.withDefaults()

	client, err := NewClient(config)
	if err != nil {
		return nil, err
	}

	return &Syncer{config: config, client: client}, nil
}

// OnFirstActivation implements Listener. The full pipeline runs synchronously:
// user lookup, classification, mapping, delivery, and record keeping. The
// returned error is always nil; failures are logged and recorded instead of
// propagating to the host event dispatcher.
func (s *Syncer) OnFirstActivation(ctx context.Context, event MembershipEvent) error {
	start := time.Now()
	defer func() {
		s.config.Metrics.RecordEventDuration(eventFirstActivation, time.Since(start))
	}()

	s.config.Logger.Info("handling first activation",
		Field{Key: "user", Value: event.UserID},
		Field{Key: "levels", Value: len(event.MembershipLevelIDs)})

	user, err := s.config.Source.GetUser(ctx, event.UserID)
	if err != nil || user == nil {
		if err == nil {
			err = ErrUserNotFound
		}
		s.config.Logger.Error("user lookup failed, sync skipped",
			Field{Key: "user", Value: event.UserID},
			Field{Key: "error", Value: err.Error()})
		s.config.Metrics.RecordEvent(eventFirstActivation, "user_not_found")
		return nil
	}

	subType := ClassifySubscription(ctx, s.config.Source, event.MembershipLevelIDs)
	status := MemberStatusForLevels(event.MembershipLevelIDs)
	payload := BuildPayload(user, subType, status, s.config.ProgramCustomerID)

	outcome, attempts, deliverErr := s.client.deliver(ctx, payload)

	s.saveRecord(ctx, event.UserID, payload, outcome, attempts, deliverErr)

	if deliverErr != nil {
		s.config.Metrics.RecordEvent(eventFirstActivation, string(outcome))
		return nil
	}
	s.config.Metrics.RecordEvent(eventFirstActivation, "success")
	return nil
}

// OnPaymentCompleted implements Listener. Observed and logged only.
func (s *Syncer) OnPaymentCompleted(ctx context.Context, payment PaymentData) error {
	s.config.Logger.Info("payment completed",
		Field{Key: "status", Value: payment.Status})
	s.config.Metrics.RecordEvent(eventPaymentCompleted, "observed")
	return nil
}

// Resync replays the pipeline for a batch of users with bounded concurrency.
// Intended for restore-purchases flows and nightly reconciliation jobs.
// Per-user semantics are identical to single-event handling: at most three
// attempts, one non-retryable transport path, log lines in attempt order.
func (s *Syncer) Resync(ctx context.Context, events []MembershipEvent) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.ResyncConcurrency)

	for _, event := range events {
		g.Go(func() error {
			return s.OnFirstActivation(ctx, event)
		})
	}
	return g.Wait()
}

// saveRecord persists the delivery audit record, best effort.
func (s *Syncer) saveRecord(ctx context.Context, userID string, payload SyncPayload, outcome Outcome, attempts int, deliverErr error) {
	if s.config.Records == nil {
		return
	}

	rec := &SyncRecord{
		UserID:   userID,
		Payload:  payload,
		Outcome:  outcome,
		Attempts: attempts,
		SyncedAt: time.Now().UTC(),
	}
	if deliverErr != nil {
		rec.LastError = deliverErr.Error()
	}

	if err := s.config.Records.SaveRecord(ctx, rec); err != nil {
		s.config.Logger.Warn("failed to persist sync record",
			Field{Key: "user", Value: userID},
			Field{Key: "error", Value: err.Error()})
	}
}

// IsAbsorbedFailure reports whether err belongs to the pipeline's absorbed
// failure taxonomy. Useful for hosts that inspect record store errors.
func IsAbsorbedFailure(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrTransportFailure) ||
		errors.Is(err, ErrRetryExhausted)
}
