package moderation

import (
	"context"
	"errors"
	"fmt"

	"github.com/gosuda/warden/internal/domain"
)

// ReconcileExpiry applies the automatic unsuspend transition when the
// account's suspension window has elapsed. It is invoked on every path that
// is about to gate a decision on the account's status, so a stale
// "suspended" view is never observable. The write goes through the same
// atomic persistence-plus-log path as an explicit unsuspend, attributed to
// the system actor in the audit trail.
//
// Accounts that are not suspended, or whose window has not elapsed, are
// returned unchanged.
func (s *Service) ReconcileExpiry(ctx context.Context, acct *domain.Account) (*domain.Account, error) {
	now := s.now()
	if acct.Status != domain.StatusSuspended || !acct.Suspension.Expired(now) {
		return acct, nil
	}

	res, err := s.engine.Compute(*acct, domain.Action{
		Type:      domain.ActionUnsuspend,
		AccountID: acct.ID,
	}, now)
	if err != nil {
		return nil, fmt.Errorf("moderation.Service.ReconcileExpiry: %w", err)
	}

	res.Entry.ActorType = domain.ActorSystem
	res.Entry.ActorID = domain.ActorSystem

	next := res.Account
	next.UpdatedAt = now
	err = s.accounts.CommitTransition(ctx, &next, &res.Entry)
	if errors.Is(err, domain.ErrConflict) {
		// A concurrent transition won the race; its state is authoritative.
		fresh, gerr := s.accounts.GetByID(ctx, acct.ID)
		if gerr != nil {
			return nil, fmt.Errorf("moderation.Service.ReconcileExpiry: reload after conflict: %w", gerr)
		}
		return fresh, nil
	}
	if err != nil {
		return nil, fmt.Errorf("moderation.Service.ReconcileExpiry: %w", err)
	}

	s.afterCommit(ctx, &next, &res.Entry, next.Status, nil)

	return &next, nil
}

// SweepExpired is an optional background pass over currently suspended
// accounts, keeping list and stat views fresh between reads. Correctness
// never depends on it; the just-in-time check above is the guarantee.
// Returns the number of accounts unsuspended.
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	suspended, err := s.accounts.List(ctx, domain.AccountFilter{Status: domain.StatusSuspended})
	if err != nil {
		return 0, fmt.Errorf("moderation.Service.SweepExpired: %w", err)
	}

	var n int
	for _, acct := range suspended {
		fresh, rerr := s.ReconcileExpiry(ctx, acct)
		if rerr != nil {
			return n, fmt.Errorf("moderation.Service.SweepExpired: %w", rerr)
		}
		if fresh.Status != domain.StatusSuspended {
			n++
		}
	}

	return n, nil
}
