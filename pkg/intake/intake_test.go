package intake

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kashif-509/Ulitmatemember-to-Acess/pkg/memsync"
)

// fakeListener records dispatched events.
type fakeListener struct {
	mu          sync.Mutex
	activations []memsync.MembershipEvent
	payments    []memsync.PaymentData
	err         error
}

func (l *fakeListener) OnFirstActivation(_ context.Context, event memsync.MembershipEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.activations = append(l.activations, event)
	return l.err
}

func (l *fakeListener) OnPaymentCompleted(_ context.Context, payment memsync.PaymentData) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.payments = append(l.payments, payment)
	return l.err
}

const testSecret = "whsec_test"

func newTestHandler(t *testing.T) (*Handler, *fakeListener) {
	t.Helper()
	listener := &fakeListener{}
	handler, err := NewHandler(Config{
		Listener:      listener,
		WebhookSecret: testSecret,
	})
	require.NoError(t, err)
	return handler, listener
}

func postEvent(handler *Handler, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/membership", strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestNewHandlerValidation(t *testing.T) {
	_, err := NewHandler(Config{WebhookSecret: testSecret})
	assert.ErrorIs(t, err, memsync.ErrNotConfigured)

	_, err = NewHandler(Config{Listener: &fakeListener{}})
	assert.ErrorIs(t, err, memsync.ErrNotConfigured)

	// A "Bearer " prefix on the configured secret is tolerated.
	handler, err := NewHandler(Config{Listener: &fakeListener{}, WebhookSecret: "Bearer " + testSecret})
	require.NoError(t, err)
	w := postEvent(handler, testSecret, `{"event":"payment_completed"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandlerRejectsNonPost(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/webhooks/membership", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHandlerRejectsBadToken(t *testing.T) {
	handler, listener := newTestHandler(t)

	w := postEvent(handler, "wrong-token", `{"event":"first_activation","user_id":"42"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postEvent(handler, "", `{"event":"first_activation","user_id":"42"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Empty(t, listener.activations)
}

func TestHandlerRejectsOversizedBody(t *testing.T) {
	handler, _ := newTestHandler(t)

	body := bytes.Repeat([]byte("a"), maxBodyBytes+1)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/membership", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+testSecret)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestHandlerRejectsMalformedPayloads(t *testing.T) {
	handler, _ := newTestHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"invalid json", "{not json"},
		{"unknown field", `{"event":"first_activation","user_id":"42","surprise":true}`},
		{"trailing object", `{"event":"payment_completed"}{"event":"payment_completed"}`},
		{"unknown event", `{"event":"subscription_expired"}`},
		{"missing user id", `{"event":"first_activation"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postEvent(handler, testSecret, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandlerDispatchesFirstActivation(t *testing.T) {
	handler, listener := newTestHandler(t)

	w := postEvent(handler, testSecret, `{"event":"first_activation","user_id":"42","membership_level_ids":["1","2"]}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
	require.Len(t, listener.activations, 1)
	assert.Equal(t, "42", listener.activations[0].UserID)
	assert.Equal(t, []string{"1", "2"}, listener.activations[0].MembershipLevelIDs)
	assert.Empty(t, listener.payments)
}

func TestHandlerDispatchesPaymentCompleted(t *testing.T) {
	handler, listener := newTestHandler(t)

	w := postEvent(handler, testSecret, `{"event":"payment_completed","payment":{"status":"completed"}}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, listener.payments, 1)
	assert.Equal(t, "completed", listener.payments[0].Status)
	assert.Empty(t, listener.activations)
}

func TestHandlerAcceptsEventWhenListenerFails(t *testing.T) {
	handler, listener := newTestHandler(t)
	listener.err = memsync.ErrRetryExhausted

	// Pipeline failures stay absorbed; 200 means accepted, not delivered.
	w := postEvent(handler, testSecret, `{"event":"first_activation","user_id":"42"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandlerSetsSecurityHeaders(t *testing.T) {
	handler, _ := newTestHandler(t)

	w := postEvent(handler, testSecret, `{"event":"payment_completed"}`)

	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}
