// Package firestore provides a Firestore implementation of the
// memsync.RecordStore interface, one document per user in a single
// collection.
package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Kashif-509/Ulitmatemember-to-Acess/pkg/memsync"
)

// Store implements memsync.RecordStore using Google Cloud Firestore
type Store struct {
	client            *firestore.Client
	recordsCollection string
}

// Config holds Firestore record store configuration
type Config struct {
	// RecordsCollection is the Firestore collection for sync records
	// Default: "membership_sync_records"
	RecordsCollection string
}

// recordDoc is the Firestore document shape for a sync record
type recordDoc struct {
	UserID    string              `firestore:"user_id"`
	Payload   memsync.SyncPayload `firestore:"payload"`
	Outcome   string              `firestore:"outcome"`
	Attempts  int                 `firestore:"attempts"`
	LastError string              `firestore:"last_error"`
	SyncedAt  time.Time           `firestore:"synced_at"`
}

// New creates a new Firestore record store
func New(client *firestore.Client, config Config) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("firestore client is required")
	}
	if config.RecordsCollection == "" {
		config.RecordsCollection = "membership_sync_records"
	}

	return &Store{
		client:            client,
		recordsCollection: config.RecordsCollection,
	}, nil
}

// SaveRecord implements memsync.RecordStore
func (s *Store) SaveRecord(ctx context.Context, rec *memsync.SyncRecord) error {
	if rec == nil || rec.UserID == "" {
		return fmt.Errorf("invalid sync record")
	}

	doc := recordDoc{
		UserID:    rec.UserID,
		Payload:   rec.Payload,
		Outcome:   string(rec.Outcome),
		Attempts:  rec.Attempts,
		LastError: rec.LastError,
		SyncedAt:  rec.SyncedAt,
	}

	_, err := s.client.Collection(s.recordsCollection).Doc(rec.UserID).Set(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to store sync record: %w", err)
	}
	return nil
}

// GetRecord implements memsync.RecordStore
func (s *Store) GetRecord(ctx context.Context, userID string) (*memsync.SyncRecord, error) {
	snap, err := s.client.Collection(s.recordsCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, memsync.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to fetch sync record: %w", err)
	}

	var doc recordDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode sync record: %w", err)
	}

	return &memsync.SyncRecord{
		UserID:    doc.UserID,
		Payload:   doc.Payload,
		Outcome:   memsync.Outcome(doc.Outcome),
		Attempts:  doc.Attempts,
		LastError: doc.LastError,
		SyncedAt:  doc.SyncedAt,
	}, nil
}
