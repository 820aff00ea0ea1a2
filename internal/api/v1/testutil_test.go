package v1_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/warden/internal/domain"
	"github.com/gosuda/warden/internal/moderation"
	"github.com/gosuda/warden/internal/server/middleware"
)

// ---------------------------------------------------------------------------
// Context helpers — inject the authenticated actor for DoCtx
// ---------------------------------------------------------------------------

func actorCtx(actorID uuid.UUID) context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, middleware.ContextKeyActorID, actorID)
	ctx = context.WithValue(ctx, middleware.ContextKeyActorRole, middleware.RoleAdmin)
	return ctx
}

// ---------------------------------------------------------------------------
// Mock Moderator
// ---------------------------------------------------------------------------

type mockModerator struct {
	applyFunc         func(ctx context.Context, act domain.Action) (*moderation.ApplyResult, error)
	applyBulkFunc     func(ctx context.Context, ids []uuid.UUID, actionType domain.ActionType, params domain.ActionParams, actorID uuid.UUID) (*moderation.BulkResult, error)
	resetPasswordFunc func(ctx context.Context, accountID, actorID uuid.UUID) (string, error)
	registerFunc      func(ctx context.Context, email, name, password string) (*domain.Account, error)
	getFunc           func(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	listFunc          func(ctx context.Context, f domain.AccountFilter) ([]*domain.Account, error)
}

func (m *mockModerator) Apply(ctx context.Context, act domain.Action) (*moderation.ApplyResult, error) {
	return m.applyFunc(ctx, act)
}

func (m *mockModerator) ApplyBulk(ctx context.Context, ids []uuid.UUID, actionType domain.ActionType, params domain.ActionParams, actorID uuid.UUID) (*moderation.BulkResult, error) {
	return m.applyBulkFunc(ctx, ids, actionType, params, actorID)
}

func (m *mockModerator) ResetPassword(ctx context.Context, accountID, actorID uuid.UUID) (string, error) {
	return m.resetPasswordFunc(ctx, accountID, actorID)
}

func (m *mockModerator) Register(ctx context.Context, email, name, password string) (*domain.Account, error) {
	return m.registerFunc(ctx, email, name, password)
}

func (m *mockModerator) Get(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return m.getFunc(ctx, id)
}

func (m *mockModerator) List(ctx context.Context, f domain.AccountFilter) ([]*domain.Account, error) {
	return m.listFunc(ctx, f)
}

// ---------------------------------------------------------------------------
// Mock AuditReader
// ---------------------------------------------------------------------------

type mockAuditReader struct {
	listByAccountFunc func(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*domain.AuditEntry, error)
	listFunc          func(ctx context.Context, limit, offset int) ([]*domain.AuditEntry, error)
}

func (m *mockAuditReader) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*domain.AuditEntry, error) {
	return m.listByAccountFunc(ctx, accountID, limit, offset)
}

func (m *mockAuditReader) List(ctx context.Context, limit, offset int) ([]*domain.AuditEntry, error) {
	return m.listFunc(ctx, limit, offset)
}
