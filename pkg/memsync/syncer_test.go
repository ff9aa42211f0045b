package memsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRecordStore is an in-memory RecordStore for pipeline tests. The real
// backends live under storage/ and have their own tests.
type fakeRecordStore struct {
	mu      sync.Mutex
	records map[string]*SyncRecord
	saveErr error
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{records: map[string]*SyncRecord{}}
}

func (s *fakeRecordStore) SaveRecord(_ context.Context, rec *SyncRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.records[rec.UserID] = rec
	return nil
}

func (s *fakeRecordStore) GetRecord(_ context.Context, userID string) (*SyncRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return rec, nil
}

func defaultStubSource() *stubSource {
	return &stubSource{
		users: map[string]*UserRecord{
			"42": {
				ID:        "42",
				Login:     "jdoe",
				FirstName: "Jane",
				LastName:  "Doe",
				Email:     "jdoe@example.com",
			},
		},
		labels: map[string]string{
			"1": "Yearly Plan",
			"2": "Monthly Plan",
		},
	}
}

func TestNewSyncerValidation(t *testing.T) {
	_, err := NewSyncer(Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewSyncer(Config{Endpoint: "https://api.example.com/import", AccessToken: "t"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewSyncer(Config{Endpoint: ":::not-a-url", AccessToken: "t", Source: defaultStubSource()})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestOnFirstActivationDelivers(t *testing.T) {
	var gotEnvelope importEnvelope
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotEnvelope))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"imported"}`))
	}))
	defer server.Close()

	logger := &recordingLogger{}
	records := newFakeRecordStore()
	syncer, err := NewSyncer(Config{
		Endpoint:    server.URL,
		AccessToken: "t",
		Source:      defaultStubSource(),
		Logger:      logger,
		Sleeper:     &fakeSleeper{},
		Records:     records,
	})
	require.NoError(t, err)

	err = syncer.OnFirstActivation(context.Background(), MembershipEvent{
		UserID:             "42",
		MembershipLevelIDs: []string{"1"},
	})
	require.NoError(t, err)

	require.Len(t, gotEnvelope.Import.Members, 1)
	payload := gotEnvelope.Import.Members[0]
	assert.Equal(t, "USER_jdoe", payload.RecordID)
	assert.Equal(t, "MEM_SYN", payload.RecordType)
	assert.Equal(t, "TDC_42", payload.MemberCustomerID)
	assert.Equal(t, SubscriptionYearly, payload.SubscriptionType)
	assert.Equal(t, StatusOpen, payload.MemberStatus)
	assert.Equal(t, "Jane Doe", payload.FullName)
	assert.Equal(t, "jdoe@example.com", payload.EmailAddress)

	rec, err := records.GetRecord(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, rec.Outcome)
	assert.Equal(t, 1, rec.Attempts)
	assert.Empty(t, rec.LastError)
	assert.False(t, rec.SyncedAt.IsZero())

	assert.Equal(t, 1, logger.countLevel("SUCCESS"))
}

func TestOnFirstActivationUserNotFound(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	logger := &recordingLogger{}
	syncer, err := NewSyncer(Config{
		Endpoint:    server.URL,
		AccessToken: "t",
		Source:      defaultStubSource(),
		Logger:      logger,
		Sleeper:     &fakeSleeper{},
	})
	require.NoError(t, err)

	err = syncer.OnFirstActivation(context.Background(), MembershipEvent{UserID: "missing"})
	require.NoError(t, err)

	// Lookup failure halts the pipeline before any HTTP attempt.
	assert.Equal(t, 0, calls)
	assert.Equal(t, 1, logger.countLevel("ERROR"))
}

func TestOnFirstActivationNoLevelsSuspends(t *testing.T) {
	var gotEnvelope importEnvelope
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotEnvelope))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	syncer, err := NewSyncer(Config{
		Endpoint:    server.URL,
		AccessToken: "t",
		Source:      defaultStubSource(),
		Sleeper:     &fakeSleeper{},
	})
	require.NoError(t, err)

	err = syncer.OnFirstActivation(context.Background(), MembershipEvent{UserID: "42"})
	require.NoError(t, err)

	require.Len(t, gotEnvelope.Import.Members, 1)
	assert.Equal(t, StatusSuspend, gotEnvelope.Import.Members[0].MemberStatus)
	assert.Equal(t, SubscriptionUnknown, gotEnvelope.Import.Members[0].SubscriptionType)
}

func TestOnFirstActivationAbsorbsDeliveryFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	records := newFakeRecordStore()
	syncer, err := NewSyncer(Config{
		Endpoint:    server.URL,
		AccessToken: "t",
		Source:      defaultStubSource(),
		Sleeper:     &fakeSleeper{},
		Records:     records,
	})
	require.NoError(t, err)

	err = syncer.OnFirstActivation(context.Background(), MembershipEvent{
		UserID:             "42",
		MembershipLevelIDs: []string{"2"},
	})
	require.NoError(t, err)

	rec, err := records.GetRecord(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, OutcomeExhaustedRetries, rec.Outcome)
	assert.Equal(t, 3, rec.Attempts)
	assert.Contains(t, rec.LastError, "multiple retries")
}

func TestOnFirstActivationRecordStoreFailureIsLogged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	logger := &recordingLogger{}
	records := newFakeRecordStore()
	records.saveErr = errors.New("store unavailable")

	syncer, err := NewSyncer(Config{
		Endpoint:    server.URL,
		AccessToken: "t",
		Source:      defaultStubSource(),
		Logger:      logger,
		Sleeper:     &fakeSleeper{},
		Records:     records,
	})
	require.NoError(t, err)

	err = syncer.OnFirstActivation(context.Background(), MembershipEvent{
		UserID:             "42",
		MembershipLevelIDs: []string{"1"},
	})
	require.NoError(t, err)

	// Delivery succeeded; only the audit write failed.
	assert.Equal(t, 1, logger.countLevel("SUCCESS"))
	assert.Equal(t, 1, logger.countLevel("WARNING"))
}

func TestOnPaymentCompletedObservesOnly(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	logger := &recordingLogger{}
	syncer, err := NewSyncer(Config{
		Endpoint:    server.URL,
		AccessToken: "t",
		Source:      defaultStubSource(),
		Logger:      logger,
		Sleeper:     &fakeSleeper{},
	})
	require.NoError(t, err)

	err = syncer.OnPaymentCompleted(context.Background(), PaymentData{Status: "completed"})
	require.NoError(t, err)

	assert.Equal(t, 0, calls)
	assert.Equal(t, 1, logger.countLevel("INFO"))
}

func TestResync(t *testing.T) {
	var mu sync.Mutex
	delivered := map[string]int{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var env importEnvelope
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&env))
		mu.Lock()
		delivered[env.Import.Members[0].MemberCustomerID]++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	source := defaultStubSource()
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("%d", 100+i)
		source.users[id] = &UserRecord{ID: id, Login: "user" + id, Email: id + "@example.com"}
	}

	syncer, err := NewSyncer(Config{
		Endpoint:          server.URL,
		AccessToken:       "t",
		Source:            source,
		Sleeper:           &fakeSleeper{},
		ResyncConcurrency: 3,
	})
	require.NoError(t, err)

	var events []MembershipEvent
	for i := 0; i < 8; i++ {
		events = append(events, MembershipEvent{
			UserID:             fmt.Sprintf("%d", 100+i),
			MembershipLevelIDs: []string{"1"},
		})
	}

	require.NoError(t, syncer.Resync(context.Background(), events))

	assert.Len(t, delivered, 8)
	for id, n := range delivered {
		assert.Equal(t, 1, n, "member %s delivered more than once", id)
	}
}

func TestIsAbsorbedFailure(t *testing.T) {
	assert.True(t, IsAbsorbedFailure(ErrUserNotFound))
	assert.True(t, IsAbsorbedFailure(fmt.Errorf("wrapped: %w", ErrTransportFailure)))
	assert.True(t, IsAbsorbedFailure(ErrRetryExhausted))
	assert.False(t, IsAbsorbedFailure(errors.New("other")))
	assert.False(t, IsAbsorbedFailure(nil))
}
