package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusRejected  Status = "rejected"
	StatusDeleted   Status = "deleted"
)

// Valid reports whether s is one of the known account statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusSuspended, StatusRejected, StatusDeleted:
		return true
	default:
		return false
	}
}

type DurationMode string

const (
	DurationIndefinite DurationMode = "indefinite"
	DurationPeriod     DurationMode = "period"
	DurationUntilDate  DurationMode = "until_date"
)

type DeleteMode string

const (
	DeleteSoft DeleteMode = "soft"
	DeleteHard DeleteMode = "hard"
)

// Approval records who activated a pending account and when.
type Approval struct {
	At time.Time `json:"at"`
	By uuid.UUID `json:"by"`
}

// Rejection records why a pending account was turned down.
type Rejection struct {
	At     time.Time `json:"at"`
	By     uuid.UUID `json:"by"`
	Reason string    `json:"reason"`
}

// Suspension is present only while the account status is "suspended".
// EndsAt is set iff Mode is period or until_date.
type Suspension struct {
	Reason    string       `json:"reason"`
	Mode      DurationMode `json:"mode"`
	StartedAt time.Time    `json:"started_at"`
	EndsAt    *time.Time   `json:"ends_at,omitempty"`
}

// Expired reports whether the suspension window has elapsed at now.
// Indefinite suspensions never expire.
func (s *Suspension) Expired(now time.Time) bool {
	return s != nil && s.EndsAt != nil && now.After(*s.EndsAt)
}

// Deletion is present only while the account status is "deleted".
// PurgeAt is set only for soft deletions; hard deletions remove the row.
type Deletion struct {
	At      time.Time  `json:"at"`
	By      uuid.UUID  `json:"by"`
	Reason  string     `json:"reason"`
	Mode    DeleteMode `json:"mode"`
	PurgeAt *time.Time `json:"purge_at,omitempty"`
}

// Account is the administrative view of a user account. At most one of
// Approval/Rejection/Suspension/Deletion carries data for the current
// status; every transition clears the others.
type Account struct {
	ID           uuid.UUID
	Email        string
	Name         string
	Phone        string
	Organization string
	Position     string
	PasswordHash string // argon2id, managed by the password reset flow
	Status       Status
	Approval     *Approval
	Rejection    *Rejection
	Suspension   *Suspension
	Deletion     *Deletion
	Version      int64 // optimistic concurrency token, bumped on every commit
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AccountFilter narrows List queries. Zero values mean "no constraint".
type AccountFilter struct {
	Status Status
	Query  string // matches email or name, substring
	Limit  int
	Offset int
}

type AccountRepository interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	List(ctx context.Context, f AccountFilter) ([]*Account, error)

	// CommitTransition persists the mutated account and its audit entry as
	// one transaction, guarded by the version the account was loaded with.
	// Returns ErrConflict if the row changed since the load.
	CommitTransition(ctx context.Context, a *Account, entry *AuditEntry) error

	// HardDelete writes the audit entry and removes the account row in one
	// transaction, so the trail survives the record. The delete is guarded
	// by the version the account was loaded with; ErrConflict if the row
	// changed since the load.
	HardDelete(ctx context.Context, a *Account, entry *AuditEntry) error
}
