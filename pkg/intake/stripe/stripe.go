// Package stripe translates Stripe webhook events into membership lifecycle
// events for deployments whose payment provider is Stripe rather than the
// host's own membership engine.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v83"

	"github.com/Kashif-509/Ulitmatemember-to-Acess/pkg/memsync"
)

const maxBodyBytes = 256 * 1024

// metadataUserIDKey is the subscription metadata key carrying the host user ID.
const metadataUserIDKey = "user_id"

// Config holds the Stripe intake configuration.
type Config struct {
	// Listener receives the translated events (required).
	Listener memsync.Listener

	// WebhookSecret is the Stripe endpoint signing secret (required).
	WebhookSecret string

	// Logger receives intake logs (default: NoopLogger).
	Logger memsync.Logger

	// Metrics tracks intake operations (default: NoopMetrics).
	Metrics memsync.Metrics
}

// Handler verifies and translates Stripe webhook events:
//   - customer.subscription.created -> Listener.OnFirstActivation, with level
//     IDs taken from the subscription item price IDs
//   - invoice.payment_succeeded -> Listener.OnPaymentCompleted
//
// Other event types are acknowledged and ignored.
type Handler struct {
	listener memsync.Listener
	secret   string
	logger   memsync.Logger
	metrics  memsync.Metrics
}

// NewHandler creates the Stripe intake handler.
func NewHandler(config Config) (*Handler, error) {
	if config.Listener == nil {
		return nil, fmt.Errorf("%w: listener is required", memsync.ErrNotConfigured)
	}
	secret := strings.TrimSpace(config.WebhookSecret)
	if secret == "" {
		return nil, fmt.Errorf("%w: webhook secret is required", memsync.ErrNotConfigured)
	}

	logger := config.Logger
	if logger == nil {
		logger = &memsync.NoopLogger{}
	}
	metrics := config.Metrics
	if metrics == nil {
		metrics = &memsync.NoopMetrics{}
	}

	return &Handler{
		listener: config.Listener,
		secret:   secret,
		logger:   logger,
		metrics:  metrics,
	}, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		h.metrics.RecordEvent("stripe", "invalid_payload")
		return
	}

	sig := r.Header.Get("Stripe-Signature")
	if sig == "" {
		sig = r.Header.Get("stripe-signature")
	}

	event, err := stripe.ConstructEvent(body, sig, h.secret)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		h.metrics.RecordEvent("stripe", "auth_failed")
		return
	}

	if err := h.processEvent(r.Context(), &event); err != nil {
		h.logger.Error("failed to translate stripe event",
			memsync.Field{Key: "event_type", Value: string(event.Type)},
			memsync.Field{Key: "error", Value: err.Error()})
		http.Error(w, "failed to process event", http.StatusInternalServerError)
		h.metrics.RecordEvent(string(event.Type), "error")
		return
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		return
	}
	h.metrics.RecordEvent(string(event.Type), "accepted")
}

// processEvent routes a verified Stripe event to the listener.
func (h *Handler) processEvent(ctx context.Context, event *stripe.Event) error {
	switch event.Type {
	case "customer.subscription.created":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("failed to unmarshal subscription: %w", err)
		}

		userID := strings.TrimSpace(sub.Metadata[metadataUserIDKey])
		if userID == "" {
			return fmt.Errorf("%w: subscription %s has no %s metadata",
				memsync.ErrInvalidEvent, sub.ID, metadataUserIDKey)
		}

		return h.listener.OnFirstActivation(ctx, memsync.MembershipEvent{
			UserID:             userID,
			MembershipLevelIDs: priceIDs(&sub),
		})
	case "invoice.payment_succeeded":
		return h.listener.OnPaymentCompleted(ctx, memsync.PaymentData{Status: "completed"})
	default:
		// Unknown event type - ignore silently
		return nil
	}
}

// priceIDs extracts the subscription item price IDs, in item order.
func priceIDs(sub *stripe.Subscription) []string {
	if sub.Items == nil {
		return nil
	}
	ids := make([]string, 0, len(sub.Items.Data))
	for _, item := range sub.Items.Data {
		if item != nil && item.Price != nil && item.Price.ID != "" {
			ids = append(ids, item.Price.ID)
		}
	}
	return ids
}
