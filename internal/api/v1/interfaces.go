package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/warden/internal/domain"
	"github.com/gosuda/warden/internal/moderation"
)

// Moderator abstracts the moderation service for handler testing.
// *moderation.Service satisfies this interface.
type Moderator interface {
	Apply(ctx context.Context, act domain.Action) (*moderation.ApplyResult, error)
	ApplyBulk(ctx context.Context, ids []uuid.UUID, actionType domain.ActionType, params domain.ActionParams, actorID uuid.UUID) (*moderation.BulkResult, error)
	ResetPassword(ctx context.Context, accountID, actorID uuid.UUID) (string, error)
	Register(ctx context.Context, email, name, password string) (*domain.Account, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	List(ctx context.Context, f domain.AccountFilter) ([]*domain.Account, error)
}

// AuditReader abstracts audit log reads for handler testing.
// The postgres audit repository satisfies this interface.
type AuditReader interface {
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*domain.AuditEntry, error)
	List(ctx context.Context, limit, offset int) ([]*domain.AuditEntry, error)
}
