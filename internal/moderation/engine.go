// Package moderation implements the account lifecycle state machine: the
// pure transition engine, the orchestrating service, suspension-expiry
// reconciliation, and bulk application.
package moderation

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/warden/internal/domain"
)

// Engine computes account state transitions. It performs no I/O: given the
// current account, an action, and an explicit now, it returns the next
// account state and the audit entry describing the change.
type Engine struct {
	purgeGrace time.Duration // retention window before a soft-deleted row may be purged
}

// NewEngine creates an Engine. purgeGrace is the soft-delete retention
// window (30 days in production).
func NewEngine(purgeGrace time.Duration) *Engine {
	return &Engine{purgeGrace: purgeGrace}
}

// Result is the outcome of a computed transition.
type Result struct {
	Account    domain.Account // next state; meaningless when HardDelete is set
	Entry      domain.AuditEntry
	HardDelete bool // the repository must remove the row after logging
}

// Compute validates the action against the current account state and
// produces the next state plus its audit entry. Parameter errors wrap
// domain.ErrInvalidParams, table violations wrap domain.ErrIllegalTransition;
// in both cases no state is touched.
func (e *Engine) Compute(acct domain.Account, act domain.Action, now time.Time) (*Result, error) {
	switch act.Type {
	case domain.ActionApprove:
		return e.approve(acct, act, now)
	case domain.ActionReject:
		return e.reject(acct, act, now)
	case domain.ActionSuspend:
		return e.suspend(acct, act, now)
	case domain.ActionUnsuspend:
		return e.unsuspend(acct, act, now)
	case domain.ActionDelete:
		return e.delete(acct, act, now)
	case domain.ActionRestore:
		return e.restore(acct, act, now)
	case domain.ActionUpdate:
		return e.update(acct, act, now)
	default:
		return nil, fmt.Errorf("moderation.Engine.Compute: unknown action %q: %w", act.Type, domain.ErrInvalidParams)
	}
}

func (e *Engine) approve(acct domain.Account, act domain.Action, now time.Time) (*Result, error) {
	if acct.Status != domain.StatusPending {
		return nil, illegal(acct.Status, act.Type)
	}

	next := clearSubStates(acct)
	next.Status = domain.StatusActive
	next.Approval = &domain.Approval{At: now, By: act.ActorID}

	return &Result{Account: next, Entry: newEntry(acct.ID, act, now)}, nil
}

func (e *Engine) reject(acct domain.Account, act domain.Action, now time.Time) (*Result, error) {
	if act.Params.Reason == "" {
		return nil, fmt.Errorf("moderation.Engine: reject requires a reason: %w", domain.ErrInvalidParams)
	}
	if acct.Status != domain.StatusPending {
		return nil, illegal(acct.Status, act.Type)
	}

	next := clearSubStates(acct)
	next.Status = domain.StatusRejected
	next.Rejection = &domain.Rejection{At: now, By: act.ActorID, Reason: act.Params.Reason}

	return &Result{Account: next, Entry: newEntry(acct.ID, act, now)}, nil
}

func (e *Engine) suspend(acct domain.Account, act domain.Action, now time.Time) (*Result, error) {
	p := act.Params
	if p.Reason == "" {
		return nil, fmt.Errorf("moderation.Engine: suspend requires a reason: %w", domain.ErrInvalidParams)
	}

	var endsAt *time.Time
	switch p.DurationMode {
	case domain.DurationIndefinite:
	case domain.DurationPeriod:
		if p.DurationDays <= 0 {
			return nil, fmt.Errorf("moderation.Engine: period suspension requires positive days, got %d: %w",
				p.DurationDays, domain.ErrInvalidParams)
		}
		t := now.Add(time.Duration(p.DurationDays) * 24 * time.Hour)
		endsAt = &t
	case domain.DurationUntilDate:
		if p.Until == nil {
			return nil, fmt.Errorf("moderation.Engine: until_date suspension requires an end date: %w", domain.ErrInvalidParams)
		}
		// Taken verbatim; the caller owns whether the date is in the future.
		t := *p.Until
		endsAt = &t
	default:
		return nil, fmt.Errorf("moderation.Engine: unknown duration mode %q: %w", p.DurationMode, domain.ErrInvalidParams)
	}

	if acct.Status != domain.StatusActive {
		return nil, illegal(acct.Status, act.Type)
	}

	next := clearSubStates(acct)
	next.Status = domain.StatusSuspended
	next.Suspension = &domain.Suspension{
		Reason:    p.Reason,
		Mode:      p.DurationMode,
		StartedAt: now,
		EndsAt:    endsAt,
	}

	entry := newEntry(acct.ID, act, now)
	entry.Detail.Suspension = &domain.SuspensionDetail{
		Mode:   p.DurationMode,
		Days:   p.DurationDays,
		EndsAt: endsAt,
	}

	return &Result{Account: next, Entry: entry}, nil
}

func (e *Engine) unsuspend(acct domain.Account, act domain.Action, now time.Time) (*Result, error) {
	if acct.Status != domain.StatusSuspended {
		return nil, illegal(acct.Status, act.Type)
	}

	next := clearSubStates(acct)
	next.Status = domain.StatusActive

	return &Result{Account: next, Entry: newEntry(acct.ID, act, now)}, nil
}

func (e *Engine) delete(acct domain.Account, act domain.Action, now time.Time) (*Result, error) {
	p := act.Params
	if p.Reason == "" {
		return nil, fmt.Errorf("moderation.Engine: delete requires a reason: %w", domain.ErrInvalidParams)
	}
	if p.DeleteMode != domain.DeleteSoft && p.DeleteMode != domain.DeleteHard {
		return nil, fmt.Errorf("moderation.Engine: unknown delete mode %q: %w", p.DeleteMode, domain.ErrInvalidParams)
	}
	if act.ActorID == acct.ID {
		return nil, fmt.Errorf("moderation.Engine: actors cannot delete their own account: %w", domain.ErrForbidden)
	}
	if acct.Status == domain.StatusDeleted {
		return nil, illegal(acct.Status, act.Type)
	}

	entry := newEntry(acct.ID, act, now)

	if p.DeleteMode == domain.DeleteHard {
		entry.Detail.Deletion = &domain.DeletionDetail{Mode: domain.DeleteHard}
		return &Result{Entry: entry, HardDelete: true}, nil
	}

	purgeAt := now.Add(e.purgeGrace)
	next := clearSubStates(acct)
	next.Status = domain.StatusDeleted
	next.Deletion = &domain.Deletion{
		At:      now,
		By:      act.ActorID,
		Reason:  p.Reason,
		Mode:    domain.DeleteSoft,
		PurgeAt: &purgeAt,
	}

	entry.Detail.Deletion = &domain.DeletionDetail{Mode: domain.DeleteSoft, PurgeAt: &purgeAt}

	return &Result{Account: next, Entry: entry}, nil
}

func (e *Engine) restore(acct domain.Account, act domain.Action, now time.Time) (*Result, error) {
	if acct.Status != domain.StatusDeleted || acct.Deletion == nil || acct.Deletion.Mode != domain.DeleteSoft {
		return nil, illegal(acct.Status, act.Type)
	}

	next := clearSubStates(acct)
	next.Status = domain.StatusActive

	return &Result{Account: next, Entry: newEntry(acct.ID, act, now)}, nil
}

// update patches profile fields and optionally overrides the status
// directly, bypassing the transition table. Always legal for an admin
// actor; logged as "update".
func (e *Engine) update(acct domain.Account, act domain.Action, now time.Time) (*Result, error) {
	patch := act.Params.Profile
	if patch == nil {
		return nil, fmt.Errorf("moderation.Engine: update requires a profile patch: %w", domain.ErrInvalidParams)
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, fmt.Errorf("moderation.Engine: unknown status %q: %w", *patch.Status, domain.ErrInvalidParams)
	}

	next := acct
	detail := &domain.UpdateDetail{}

	apply := func(field string, dst *string, src *string) {
		if src != nil {
			*dst = *src
			detail.Fields = append(detail.Fields, field)
		}
	}
	apply("name", &next.Name, patch.Name)
	apply("email", &next.Email, patch.Email)
	apply("phone", &next.Phone, patch.Phone)
	apply("organization", &next.Organization, patch.Organization)
	apply("position", &next.Position, patch.Position)

	if patch.Status != nil && *patch.Status != acct.Status {
		// Escape hatch: the status is set verbatim and sub-state fields are
		// left as they were, which can leave them inconsistent with the new
		// status. Preserved source behavior; the audit trail records it.
		detail.StatusFrom = acct.Status
		detail.StatusTo = *patch.Status
		next.Status = *patch.Status
		detail.Fields = append(detail.Fields, "status")
	}

	if len(detail.Fields) == 0 {
		return nil, fmt.Errorf("moderation.Engine: update patch is empty: %w", domain.ErrInvalidParams)
	}

	entry := newEntry(acct.ID, act, now)
	entry.Detail.Update = detail

	return &Result{Account: next, Entry: entry}, nil
}

// clearSubStates returns a copy of acct with every status-specific
// sub-state dropped; the transition then sets the one it owns.
func clearSubStates(acct domain.Account) domain.Account {
	next := acct
	next.Approval = nil
	next.Rejection = nil
	next.Suspension = nil
	next.Deletion = nil
	return next
}

func newEntry(accountID uuid.UUID, act domain.Action, now time.Time) domain.AuditEntry {
	return domain.AuditEntry{
		ID:         uuid.New(),
		AccountID:  accountID,
		Action:     act.Type,
		ActorType:  domain.ActorAdmin,
		ActorID:    act.ActorID.String(),
		Reason:     act.Params.Reason,
		OccurredAt: now,
	}
}

func illegal(from domain.Status, action domain.ActionType) error {
	return fmt.Errorf("moderation.Engine: %s is not legal from status %s: %w", action, from, domain.ErrIllegalTransition)
}
