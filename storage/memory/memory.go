// Package memory provides an in-memory implementation of the
// memsync.RecordStore interface. This implementation is primarily intended
// for testing and development.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Kashif-509/Ulitmatemember-to-Acess/pkg/memsync"
)

// Store implements memsync.RecordStore using an in-memory map
type Store struct {
	mu      sync.RWMutex
	records map[string]*memsync.SyncRecord
}

// New creates a new in-memory record store
func New() *Store {
	return &Store{
		records: make(map[string]*memsync.SyncRecord),
	}
}

// SaveRecord implements memsync.RecordStore
func (s *Store) SaveRecord(ctx context.Context, rec *memsync.SyncRecord) error {
	if rec == nil || rec.UserID == "" {
		return fmt.Errorf("invalid sync record")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy to prevent external mutations
	recCopy := *rec
	s.records[rec.UserID] = &recCopy
	return nil
}

// GetRecord implements memsync.RecordStore
func (s *Store) GetRecord(ctx context.Context, userID string) (*memsync.SyncRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[userID]
	if !ok {
		return nil, memsync.ErrRecordNotFound
	}

	// Return a copy
	recCopy := *rec
	return &recCopy, nil
}

// Clear removes all data (useful for testing)
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*memsync.SyncRecord)
}
