package notify

import (
	"github.com/google/uuid"
)

// EventType identifies the notification sent for a moderation outcome.
// Event types mirror moderation action types.
type EventType string

const (
	EventApprovalResult EventType = "approval_result"
	EventRejection      EventType = "rejection"
	EventSuspension     EventType = "suspension"
	EventUnsuspension   EventType = "unsuspension"
	EventDeletion       EventType = "deletion"
	EventPasswordReset  EventType = "password_reset"
)

// Event is a fire-and-forget notification about a committed moderation
// action. Detail carries event-specific values (suspension end date,
// temporary password, ...).
type Event struct {
	Type      EventType
	AccountID uuid.UUID
	Email     string
	Name      string
	Reason    string
	Detail    map[string]string
}
