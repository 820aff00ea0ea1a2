package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Actor types recorded on audit entries.
const (
	ActorAdmin  = "admin"
	ActorSystem = "system" // automatic transitions, e.g. suspension expiry
)

// SuspensionDetail is the audit payload of a suspend action.
type SuspensionDetail struct {
	Mode   DurationMode `json:"mode"`
	Days   int          `json:"days,omitempty"`
	EndsAt *time.Time   `json:"ends_at,omitempty"`
}

// DeletionDetail is the audit payload of a delete action.
type DeletionDetail struct {
	Mode    DeleteMode `json:"mode"`
	PurgeAt *time.Time `json:"purge_at,omitempty"`
}

// UpdateDetail is the audit payload of an admin update action.
type UpdateDetail struct {
	Fields     []string `json:"fields"`
	StatusFrom Status   `json:"status_from,omitempty"`
	StatusTo   Status   `json:"status_to,omitempty"`
}

// ActionDetail is a tagged union keyed by the entry's Action: exactly the
// variant for that action is populated, the rest stay nil. Stored as one
// JSON column so the log remains a single stream.
type ActionDetail struct {
	Suspension *SuspensionDetail `json:"suspension,omitempty"`
	Deletion   *DeletionDetail   `json:"deletion,omitempty"`
	Update     *UpdateDetail     `json:"update,omitempty"`
}

// AuditEntry is one append-only record of a moderation action. Entries are
// never mutated or deleted; one is written for every successful transition,
// in the same transaction as the account mutation.
type AuditEntry struct {
	ID         uuid.UUID
	AccountID  uuid.UUID
	Action     ActionType
	ActorType  string // ActorAdmin or ActorSystem
	ActorID    string // admin UUID string, or "system"
	Reason     string
	Detail     ActionDetail
	OccurredAt time.Time
}

// AuditRepository reads the append-only log. Writes have no standalone
// path: every entry is inserted inside the account repository's commit
// transactions so a record can never exist without its transition.
type AuditRepository interface {
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*AuditEntry, error)
	List(ctx context.Context, limit, offset int) ([]*AuditEntry, error)
}
