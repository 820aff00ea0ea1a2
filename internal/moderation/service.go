package moderation

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/warden/internal/domain"
	"github.com/gosuda/warden/internal/notify"
)

// Notifier enqueues best-effort account notifications. Delivery failures
// never affect moderation outcomes.
type Notifier interface {
	Enqueue(e notify.Event)
}

// Publisher broadcasts committed transitions to the read-side event stream.
// Publish failures are logged, never returned.
type Publisher interface {
	PublishTransition(ctx context.Context, entry *domain.AuditEntry, status domain.Status) error
}

// PasswordHasher hashes temporary passwords issued by the admin reset flow.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// Service orchestrates moderation actions: it loads the account, reconciles
// an elapsed suspension, delegates to the Engine, persists the mutation and
// its audit entry atomically, and enqueues a notification.
type Service struct {
	engine    *Engine
	accounts  domain.AccountRepository
	notifier  Notifier       // nil disables notifications
	publisher Publisher      // nil disables the event stream
	hasher    PasswordHasher // required only for ResetPassword
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier attaches the notification dispatcher.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithPublisher attaches the event stream publisher.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithPasswordHasher attaches the hasher used by ResetPassword.
func WithPasswordHasher(h PasswordHasher) Option {
	return func(s *Service) { s.hasher = h }
}

// WithClock overrides the time source. Tests use this to pin "now".
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a moderation Service around the given engine and
// account repository.
func NewService(engine *Engine, accounts domain.AccountRepository, opts ...Option) *Service {
	s := &Service{
		engine:   engine,
		accounts: accounts,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ApplyResult reports the outcome of a successful moderation action.
type ApplyResult struct {
	Status  domain.Status
	Account *domain.Account // nil after a hard delete
}

// Apply runs one moderation action end to end. The account mutation and its
// audit entry are committed atomically; the notification is dispatched after
// the commit and never awaited.
func (s *Service) Apply(ctx context.Context, act domain.Action) (*ApplyResult, error) {
	// Self-deletion is forbidden regardless of the account's state, even
	// when the record no longer exists.
	if act.Type == domain.ActionDelete && act.ActorID == act.AccountID {
		return nil, fmt.Errorf("moderation.Service.Apply: actors cannot delete their own account: %w", domain.ErrForbidden)
	}

	acct, err := s.accounts.GetByID(ctx, act.AccountID)
	if err != nil {
		return nil, fmt.Errorf("moderation.Service.Apply: %w", err)
	}

	// An elapsed suspension must be corrected before the transition table
	// is consulted, or a stale "suspended" view would gate the decision.
	acct, err = s.ReconcileExpiry(ctx, acct)
	if err != nil {
		return nil, fmt.Errorf("moderation.Service.Apply: %w", err)
	}

	now := s.now()
	res, err := s.engine.Compute(*acct, act, now)
	if err != nil {
		return nil, fmt.Errorf("moderation.Service.Apply: %w", err)
	}

	if res.HardDelete {
		if err := s.accounts.HardDelete(ctx, acct, &res.Entry); err != nil {
			return nil, fmt.Errorf("moderation.Service.Apply: %w", err)
		}
		s.afterCommit(ctx, acct, &res.Entry, domain.StatusDeleted, act.Params.Notify)
		return &ApplyResult{Status: domain.StatusDeleted}, nil
	}

	next := res.Account
	next.UpdatedAt = now
	if err := s.accounts.CommitTransition(ctx, &next, &res.Entry); err != nil {
		return nil, fmt.Errorf("moderation.Service.Apply: %w", err)
	}

	s.afterCommit(ctx, &next, &res.Entry, next.Status, act.Params.Notify)

	return &ApplyResult{Status: next.Status, Account: &next}, nil
}

// Get loads an account, correcting an elapsed suspension first so callers
// never gate a decision on a stale "suspended" status.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	acct, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("moderation.Service.Get: %w", err)
	}

	acct, err = s.ReconcileExpiry(ctx, acct)
	if err != nil {
		return nil, fmt.Errorf("moderation.Service.Get: %w", err)
	}

	return acct, nil
}

// List is a thin read path over the account repository. Suspension expiry
// is reconciled per returned record; list views tolerate the extra writes
// because expired suspensions are rare relative to reads.
func (s *Service) List(ctx context.Context, f domain.AccountFilter) ([]*domain.Account, error) {
	accts, err := s.accounts.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("moderation.Service.List: %w", err)
	}

	for i, acct := range accts {
		fresh, rerr := s.ReconcileExpiry(ctx, acct)
		if rerr != nil {
			return nil, fmt.Errorf("moderation.Service.List: %w", rerr)
		}
		accts[i] = fresh
	}

	return accts, nil
}

// ResetPassword issues a temporary password for an active account, persists
// its hash together with the audit entry, and notifies the account holder.
// The temporary password is returned to the caller exactly once.
func (s *Service) ResetPassword(ctx context.Context, accountID, actorID uuid.UUID) (string, error) {
	if s.hasher == nil {
		return "", fmt.Errorf("moderation.Service.ResetPassword: no password hasher configured: %w", domain.ErrInvalidParams)
	}

	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return "", fmt.Errorf("moderation.Service.ResetPassword: %w", err)
	}

	acct, err = s.ReconcileExpiry(ctx, acct)
	if err != nil {
		return "", fmt.Errorf("moderation.Service.ResetPassword: %w", err)
	}

	if acct.Status != domain.StatusActive {
		return "", fmt.Errorf("moderation.Service.ResetPassword: password_reset is not legal from status %s: %w",
			acct.Status, domain.ErrIllegalTransition)
	}

	temp, err := generatePassword()
	if err != nil {
		return "", fmt.Errorf("moderation.Service.ResetPassword: %w", err)
	}

	hash, err := s.hasher.Hash(temp)
	if err != nil {
		return "", fmt.Errorf("moderation.Service.ResetPassword: %w", err)
	}

	now := s.now()
	next := *acct
	next.PasswordHash = hash
	next.UpdatedAt = now

	entry := domain.AuditEntry{
		ID:         uuid.New(),
		AccountID:  acct.ID,
		Action:     domain.ActionPasswordReset,
		ActorType:  domain.ActorAdmin,
		ActorID:    actorID.String(),
		OccurredAt: now,
	}

	if err := s.accounts.CommitTransition(ctx, &next, &entry); err != nil {
		return "", fmt.Errorf("moderation.Service.ResetPassword: %w", err)
	}

	if s.notifier != nil {
		s.notifier.Enqueue(notify.Event{
			Type:      notify.EventPasswordReset,
			AccountID: next.ID,
			Email:     next.Email,
			Name:      next.Name,
			Detail:    map[string]string{"temporary_password": temp},
		})
	}
	s.publish(ctx, &entry, next.Status)

	return temp, nil
}

// Register creates an account in pending status. Moderation then governs
// every later state change. No audit entry is written: registration is a
// self-service act, not a moderation action.
func (s *Service) Register(ctx context.Context, email, name, password string) (*domain.Account, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("moderation.Service.Register: email and password are required: %w", domain.ErrInvalidParams)
	}
	if s.hasher == nil {
		return nil, fmt.Errorf("moderation.Service.Register: no password hasher configured: %w", domain.ErrInvalidParams)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("moderation.Service.Register: %w", err)
	}

	now := s.now()
	acct := &domain.Account{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Status:       domain.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.accounts.Create(ctx, acct); err != nil {
		return nil, fmt.Errorf("moderation.Service.Register: %w", err)
	}

	return acct, nil
}

// afterCommit dispatches the notification and the stream event for a
// committed transition. Both are best-effort.
func (s *Service) afterCommit(ctx context.Context, acct *domain.Account, entry *domain.AuditEntry, status domain.Status, override *bool) {
	if s.notifier != nil {
		if ev, ok := eventFor(acct, entry); ok && shouldNotify(entry.Action, override) {
			s.notifier.Enqueue(ev)
		}
	}
	s.publish(ctx, entry, status)
}

func (s *Service) publish(ctx context.Context, entry *domain.AuditEntry, status domain.Status) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransition(ctx, entry, status); err != nil {
		log.Error().
			Err(err).
			Str("account_id", entry.AccountID.String()).
			Str("action", string(entry.Action)).
			Msg("moderation: event publish failed")
	}
}

// shouldNotify applies the per-action default, honoring an explicit caller
// override. Every notifying action defaults to true.
func shouldNotify(action domain.ActionType, override *bool) bool {
	if override != nil {
		return *override
	}

	switch action {
	case domain.ActionApprove, domain.ActionReject, domain.ActionSuspend,
		domain.ActionUnsuspend, domain.ActionDelete, domain.ActionRestore:
		return true
	default:
		return false
	}
}

// eventFor maps a committed transition to its notification event. Update
// has no account-facing notification.
func eventFor(acct *domain.Account, entry *domain.AuditEntry) (notify.Event, bool) {
	var typ notify.EventType
	detail := map[string]string{}

	switch entry.Action {
	case domain.ActionApprove:
		typ = notify.EventApprovalResult
	case domain.ActionReject:
		typ = notify.EventRejection
	case domain.ActionSuspend:
		typ = notify.EventSuspension
		if d := entry.Detail.Suspension; d != nil && d.EndsAt != nil {
			detail["ends_at"] = d.EndsAt.Format(time.RFC3339)
		}
	case domain.ActionUnsuspend:
		typ = notify.EventUnsuspension
	case domain.ActionDelete:
		typ = notify.EventDeletion
	case domain.ActionRestore:
		typ = notify.EventApprovalResult
	default:
		return notify.Event{}, false
	}

	return notify.Event{
		Type:      typ,
		AccountID: acct.ID,
		Email:     acct.Email,
		Name:      acct.Name,
		Reason:    entry.Reason,
		Detail:    detail,
	}, true
}

// generatePassword returns a random 16-hex-character temporary password.
func generatePassword() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// IsRetryable reports whether an Apply failure is safe to retry as-is
// (storage outage or commit conflict). InvalidParams, IllegalTransition,
// Forbidden, and NotFound require caller correction instead.
func IsRetryable(err error) bool {
	return errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrStorage)
}
