// Package intake exposes the membership sync pipeline over HTTP for hosts
// that deliver lifecycle events as webhooks instead of in-process calls.
package intake

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Kashif-509/Ulitmatemember-to-Acess/pkg/memsync"
)

// maxBodyBytes caps webhook payload size. Host event envelopes are tiny;
// 256KB is a safe upper bound against memory exhaustion.
const maxBodyBytes = 256 * 1024

var errPayloadTooLarge = errors.New("payload too large")

// Config holds the webhook intake configuration.
type Config struct {
	// Listener receives the dispatched events (required).
	Listener memsync.Listener

	// WebhookSecret is the bearer token the host must present (required).
	WebhookSecret string

	// Logger receives intake logs (default: NoopLogger).
	Logger memsync.Logger

	// Metrics tracks intake operations (default: NoopMetrics).
	Metrics memsync.Metrics
}

// Handler processes incoming host webhook events and dispatches them to the
// configured Listener. The listener absorbs pipeline failures, so a 200
// response means "event accepted", not "sync delivered".
type Handler struct {
	listener memsync.Listener
	secret   []byte
	logger   memsync.Logger
	metrics  memsync.Metrics
}

// eventEnvelope is the wire shape of a host webhook event.
type eventEnvelope struct {
	Event              string   `json:"event"`
	UserID             string   `json:"user_id"`
	MembershipLevelIDs []string `json:"membership_level_ids"`
	Payment            *struct {
		Status string `json:"status"`
	} `json:"payment"`
}

// NewHandler creates the webhook intake handler.
func NewHandler(config Config) (*Handler, error) {
	if config.Listener == nil {
		return nil, fmt.Errorf("%w: listener is required", memsync.ErrNotConfigured)
	}

	secret := strings.TrimSpace(config.WebhookSecret)
	if strings.HasPrefix(strings.ToLower(secret), "bearer ") {
		secret = strings.TrimSpace(secret[len("bearer "):])
	}
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
		secret:   []byte(secret),
		logger:   logger,
		metrics:  metrics,
	}, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	setSecurityHeaders(w)

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.verifyRequest(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		h.metrics.RecordEvent("unknown", "auth_failed")
		return
	}

	body, err := readBodyStrict(w, r)
	if err != nil {
		if errors.Is(err, errPayloadTooLarge) {
			http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
		} else {
			http.Error(w, fmt.Sprintf("invalid payload: %v", err), http.StatusBadRequest)
		}
		h.metrics.RecordEvent("unknown", "invalid_payload")
		return
	}

	var envelope eventEnvelope
	if err := parseEnvelope(body, &envelope); err != nil {
		http.Error(w, fmt.Sprintf("invalid payload: %v", err), http.StatusBadRequest)
		h.metrics.RecordEvent("unknown", "invalid_payload")
		return
	}

	if err := h.dispatch(r, &envelope); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		h.metrics.RecordEvent(envelope.Event, "invalid_event")
		return
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		return
	}

	h.metrics.RecordEvent(envelope.Event, "accepted")
	h.metrics.RecordEventDuration(envelope.Event, time.Since(start))
}

// dispatch routes the envelope to the listener. Listener errors are absorbed
// by the pipeline itself; only malformed envelopes produce an error here.
func (h *Handler) dispatch(r *http.Request, envelope *eventEnvelope) error {
	switch envelope.Event {
	case "first_activation":
		userID := strings.TrimSpace(envelope.UserID)
		if userID == "" {
			return fmt.Errorf("%w: missing user id", memsync.ErrInvalidEvent)
		}
		event := memsync.MembershipEvent{
			UserID:             userID,
			MembershipLevelIDs: envelope.MembershipLevelIDs,
		}
		_ = h.listener.OnFirstActivation(r.Context(), event)
		return nil
	case "payment_completed":
		payment := memsync.PaymentData{}
		if envelope.Payment != nil {
			payment.Status = envelope.Payment.Status
		}
		_ = h.listener.OnPaymentCompleted(r.Context(), payment)
		return nil
	default:
		return fmt.Errorf("%w: unknown event %q", memsync.ErrInvalidEvent, envelope.Event)
	}
}

// verifyRequest compares the presented bearer token in constant time.
func (h *Handler) verifyRequest(r *http.Request) bool {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		auth = strings.TrimSpace(auth[len("bearer "):])
	}
	if auth == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(auth), h.secret) == 1
}

// readBodyStrict reads the request body with a size limit and rejects empty bodies.
func readBodyStrict(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	body, err := io.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		if err.Error() == "http: request body too large" {
			return nil, fmt.Errorf("%w (max %d bytes)", errPayloadTooLarge, maxBodyBytes)
		}
		return nil, err
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty body")
	}
	return body, nil
}

// parseEnvelope decodes the event JSON with strict validation.
func parseEnvelope(body []byte, envelope *eventEnvelope) error {
	dec := json.NewDecoder(strings.NewReader(string(body)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(envelope); err != nil {
		return fmt.Errorf("failed to parse event payload: %w", err)
	}
	if dec.More() {
		return fmt.Errorf("multiple JSON objects in payload")
	}
	return nil
}

func setSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
}
