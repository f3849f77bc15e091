package audit

import (
	"sync"
	"time"
)

// ChangeRecord is a single entry in the change log.
type ChangeRecord struct {
	TodoID string    `json:"todo_id"`
	UserID string    `json:"user_id,omitempty"`
	Action string    `json:"action"`
	At     time.Time `json:"at"`
}

// Actions recorded in the change log.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// DefaultMaxRecords is the default maximum number of change records to retain.
const DefaultMaxRecords = 10000

// AuditStore provides thread-safe storage for audit data.
type AuditStore struct {
	mu         sync.RWMutex
	records    []ChangeRecord
	created    int64
	updated    int64
	deleted    int64
	maxRecords int
}

// NewAuditStore creates a new audit store with default limits.
func NewAuditStore() *AuditStore {
	return NewAuditStoreWithLimit(DefaultMaxRecords)
}

// NewAuditStoreWithLimit creates a new audit store with a custom limit.
func NewAuditStoreWithLimit(maxRecords int) *AuditStore {
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	return &AuditStore{
		records:    make([]ChangeRecord, 0),
		maxRecords: maxRecords,
	}
}

// Record appends a change record, dropping the oldest entries once the
// retention limit is exceeded.
func (s *AuditStore) Record(rec ChangeRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
	if len(s.records) > s.maxRecords {
		excess := len(s.records) - s.maxRecords
		s.records = s.records[excess:]
	}

	switch rec.Action {
	case ActionCreated:
		s.created++
	case ActionUpdated:
		s.updated++
	case ActionDeleted:
		s.deleted++
	}
}

// Recent returns the most recent change records, newest last.
func (s *AuditStore) Recent(limit int) []ChangeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return nil
	}

	start := 0
	if len(s.records) > limit {
		start = len(s.records) - limit
	}

	result := make([]ChangeRecord, len(s.records)-start)
	copy(result, s.records[start:])
	return result
}

// Summary returns overall change counters.
func (s *AuditStore) Summary() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]any{
		"todos_created": s.created,
		"todos_updated": s.updated,
		"todos_deleted": s.deleted,
		"change_log":    len(s.records),
	}
}
