package memsync

import "context"

// MembershipSource abstracts the host application's membership engine.
// Implementations resolve users and level metadata at event-handling time;
// nothing is cached by this module.
type MembershipSource interface {
	// GetUser fetches the user record for the given host identifier.
	// Returns ErrUserNotFound when the identifier does not resolve.
	GetUser(ctx context.Context, userID string) (*UserRecord, error)

	// GetLevelLabel resolves the human-readable label for a membership level.
	GetLevelLabel(ctx context.Context, levelID string) (string, error)
}

// RecordStore persists the audit record of the most recent delivery per user.
// The pipeline treats the store as optional and best effort: storage failures
// are logged, never escalated.
type RecordStore interface {
	// SaveRecord stores the record, replacing any previous record for the user.
	SaveRecord(ctx context.Context, rec *SyncRecord) error

	// GetRecord retrieves the most recent record for a user.
	// Returns ErrRecordNotFound when none exists.
	GetRecord(ctx context.Context, userID string) (*SyncRecord, error)
}
