// Package postgres provides a PostgreSQL implementation of the
// memsync.RecordStore interface. Records are upserted per user; the payload
// is stored as JSONB.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kashif-509/Ulitmatemember-to-Acess/pkg/memsync"
)

// Store implements memsync.RecordStore using PostgreSQL
type Store struct {
	pool   *pgxpool.Pool
	config Config
}

// Config holds PostgreSQL record store configuration
type Config struct {
	// ConnectionString is the PostgreSQL connection string
	ConnectionString string

	// Pool configuration
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		MaxConns:        10,
		MinConns:        2,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}
}

// New creates a new PostgreSQL record store and bootstraps the schema
func New(ctx context.Context, config Config) (*Store, error) {
	if config.ConnectionString == "" {
		return nil, fmt.Errorf("connection string is required")
	}

	poolConfig, err := pgxpool.ParseConfig(config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	if config.MaxConns > 0 {
		poolConfig.MaxConns = config.MaxConns
	}
	if config.MinConns > 0 {
		poolConfig.MinConns = config.MinConns
	}
	if config.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = config.MaxConnLifetime
	}
	if config.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = config.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	s := &Store{pool: pool, config: config}

	if err := s.createSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return s, nil
}

// createSchema creates the sync_records table if it does not exist
func (s *Store) createSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS sync_records (
			user_id    TEXT PRIMARY KEY,
			payload    JSONB NOT NULL,
			outcome    TEXT NOT NULL,
			attempts   INT NOT NULL,
			last_error TEXT NOT NULL DEFAULT '',
			synced_at  TIMESTAMPTZ NOT NULL
		)
	`)
	return err
}

// SaveRecord implements memsync.RecordStore
func (s *Store) SaveRecord(ctx context.Context, rec *memsync.SyncRecord) error {
	if rec == nil || rec.UserID == "" {
		return fmt.Errorf("invalid sync record")
	}

	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO sync_records (user_id, payload, outcome, attempts, last_error, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			payload    = EXCLUDED.payload,
			outcome    = EXCLUDED.outcome,
			attempts   = EXCLUDED.attempts,
			last_error = EXCLUDED.last_error,
			synced_at  = EXCLUDED.synced_at
	`, rec.UserID, payload, string(rec.Outcome), rec.Attempts, rec.LastError, rec.SyncedAt)
	if err != nil {
		return fmt.Errorf("failed to store sync record: %w", err)
	}
	return nil
}

// GetRecord implements memsync.RecordStore
func (s *Store) GetRecord(ctx context.Context, userID string) (*memsync.SyncRecord, error) {
	var (
		rec     memsync.SyncRecord
		payload []byte
		outcome string
	)

	err := s.pool.QueryRow(ctx, `
		SELECT user_id, payload, outcome, attempts, last_error, synced_at
		FROM sync_records
		WHERE user_id = $1
	`, userID).Scan(&rec.UserID, &payload, &outcome, &rec.Attempts, &rec.LastError, &rec.SyncedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, memsync.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to fetch sync record: %w", err)
	}

	if err := json.Unmarshal(payload, &rec.Payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	rec.Outcome = memsync.Outcome(outcome)
	return &rec, nil
}

// Close releases the connection pool
func (s *Store) Close() {
	s.pool.Close()
}
