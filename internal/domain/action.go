package domain

import (
	"time"

	"github.com/google/uuid"
)

type ActionType string

const (
	ActionApprove       ActionType = "approve"
	ActionReject        ActionType = "reject"
	ActionSuspend       ActionType = "suspend"
	ActionUnsuspend     ActionType = "unsuspend"
	ActionDelete        ActionType = "delete"
	ActionRestore       ActionType = "restore"
	ActionUpdate        ActionType = "update"
	ActionPasswordReset ActionType = "password_reset"
)

// Valid reports whether t is a known moderation action.
func (t ActionType) Valid() bool {
	switch t {
	case ActionApprove, ActionReject, ActionSuspend, ActionUnsuspend,
		ActionDelete, ActionRestore, ActionUpdate, ActionPasswordReset:
		return true
	default:
		return false
	}
}

// ProfilePatch carries the optional field updates of an admin "update"
// action. Nil fields are left untouched.
type ProfilePatch struct {
	Name         *string
	Email        *string
	Phone        *string
	Organization *string
	Position     *string

	// Status, when set, overrides the account status directly without
	// consulting the transition table. Administrative escape hatch.
	Status *Status
}

// ActionParams holds the action-specific inputs of a moderation command.
type ActionParams struct {
	Reason       string
	DurationMode DurationMode
	DurationDays int
	Until        *time.Time // end of an until_date suspension, taken verbatim
	DeleteMode   DeleteMode
	Notify       *bool // override of the per-action notification default
	Profile      *ProfilePatch
}

// Action is the transient moderation command handed to the engine.
// It is never persisted; its outcome is.
type Action struct {
	Type      ActionType
	AccountID uuid.UUID
	ActorID   uuid.UUID
	Params    ActionParams
}
