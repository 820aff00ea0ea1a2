package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/warden/internal/domain"
)

type ListAccountAuditInput struct {
	ID     uuid.UUID `path:"id" doc:"Account ID"`
	Limit  int       `query:"limit" doc:"Page size (max 200)"`
	Offset int       `query:"offset" doc:"Page offset"`
}

type ListAuditInput struct {
	Limit  int `query:"limit" doc:"Page size (max 200)"`
	Offset int `query:"offset" doc:"Page offset"`
}

type ListAuditOutput struct {
	Body []*domain.AuditEntry
}

// RegisterAuditRoutes mounts read access to the moderation trail. The log
// survives hard-deleted accounts, so the per-account listing works for ids
// that no longer resolve to a record.
func RegisterAuditRoutes(api huma.API, audit AuditReader) {
	huma.Register(api, huma.Operation{
		OperationID: "list-account-audit",
		Method:      http.MethodGet,
		Path:        "/accounts/{id}/audit",
		Summary:     "List the moderation trail of one account",
		Tags:        []string{"Audit"},
	}, func(ctx context.Context, input *ListAccountAuditInput) (*ListAuditOutput, error) {
		limit, offset := clampPage(input.Limit, input.Offset)

		entries, err := audit.ListByAccount(ctx, input.ID, limit, offset)
		if err != nil {
			return nil, mapError(err)
		}
		if entries == nil {
			entries = []*domain.AuditEntry{}
		}
		return &ListAuditOutput{Body: entries}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-audit",
		Method:      http.MethodGet,
		Path:        "/audit",
		Summary:     "List recent moderation actions across all accounts",
		Tags:        []string{"Audit"},
	}, func(ctx context.Context, input *ListAuditInput) (*ListAuditOutput, error) {
		limit, offset := clampPage(input.Limit, input.Offset)

		entries, err := audit.List(ctx, limit, offset)
		if err != nil {
			return nil, mapError(err)
		}
		if entries == nil {
			entries = []*domain.AuditEntry{}
		}
		return &ListAuditOutput{Body: entries}, nil
	})
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
