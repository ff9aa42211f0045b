// Package redis provides a Redis implementation of the memsync.RecordStore
// interface. Records are stored as JSON values under a configurable key
// prefix with an optional TTL.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Kashif-509/Ulitmatemember-to-Acess/pkg/memsync"
)

// Store implements memsync.RecordStore using Redis
type Store struct {
	client redis.UniversalClient
	config Config
}

// Config holds Redis record store configuration
type Config struct {
	// KeyPrefix is prepended to all Redis keys (default: "memsync:")
	KeyPrefix string

	// RecordTTL is the TTL for sync records (0 = no expiration)
	RecordTTL time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		KeyPrefix: "memsync:",
		RecordTTL: 0,
	}
}

// New creates a new Redis record store
// The client can be *redis.Client, *redis.ClusterClient, or *redis.Ring
func New(client redis.UniversalClient, config Config) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "memsync:"
	}

	return &Store{client: client, config: config}, nil
}

// SaveRecord implements memsync.RecordStore
func (s *Store) SaveRecord(ctx context.Context, rec *memsync.SyncRecord) error {
	if rec == nil || rec.UserID == "" {
		return fmt.Errorf("invalid sync record")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal sync record: %w", err)
	}

	if err := s.client.Set(ctx, s.recordKey(rec.UserID), data, s.config.RecordTTL).Err(); err != nil {
		return fmt.Errorf("failed to store sync record: %w", err)
	}
	return nil
}

// GetRecord implements memsync.RecordStore
func (s *Store) GetRecord(ctx context.Context, userID string) (*memsync.SyncRecord, error) {
	data, err := s.client.Get(ctx, s.recordKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, memsync.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to fetch sync record: %w", err)
	}

	var rec memsync.SyncRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sync record: %w", err)
	}
	return &rec, nil
}

func (s *Store) recordKey(userID string) string {
	return s.config.KeyPrefix + "record:" + userID
}
