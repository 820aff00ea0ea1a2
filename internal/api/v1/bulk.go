package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/warden/internal/domain"
)

type BulkActionInput struct {
	Action string `path:"action" enum:"approve,reject,suspend,unsuspend,delete,restore" doc:"Action applied to every id"`
	Body   struct {
		AccountIDs   []uuid.UUID `json:"account_ids" minItems:"1" doc:"Target account IDs"`
		Reason       string      `json:"reason,omitempty" doc:"Shared reason, required by reject/suspend/delete"`
		DurationMode string      `json:"duration_mode,omitempty" enum:",indefinite,period,until_date" doc:"Suspension duration mode"`
		DurationDays int         `json:"duration_days,omitempty" doc:"Days for period suspensions"`
		Until        *time.Time  `json:"until,omitempty" doc:"End date for until_date suspensions"`
		DeleteMode   string      `json:"delete_mode,omitempty" enum:",soft,hard" doc:"Deletion mode, defaults to soft"`
		Notify       *bool       `json:"notify,omitempty" doc:"Override the notification default"`
	}
}

// BulkOutcome reports one failed member of a batch.
type BulkOutcome struct {
	AccountID uuid.UUID `json:"account_id"`
	Error     string    `json:"error"`
}

type BulkActionOutput struct {
	Body struct {
		Succeeded []uuid.UUID   `json:"succeeded"`
		Failed    []BulkOutcome `json:"failed"`
	}
}

// RegisterBulkRoutes mounts the bulk moderation endpoint. Partial failure
// is a 200 with per-id outcomes; only a defective batch is an error.
func RegisterBulkRoutes(api huma.API, svc Moderator) {
	huma.Register(api, huma.Operation{
		OperationID: "bulk-moderate-accounts",
		Method:      http.MethodPost,
		Path:        "/accounts/bulk/{action}",
		Summary:     "Apply one moderation action to many accounts",
		Tags:        []string{"Moderation"},
	}, func(ctx context.Context, input *BulkActionInput) (*BulkActionOutput, error) {
		actorID, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		actionType := domain.ActionType(input.Action)

		params := domain.ActionParams{
			Reason:       input.Body.Reason,
			DurationMode: domain.DurationMode(input.Body.DurationMode),
			DurationDays: input.Body.DurationDays,
			Until:        input.Body.Until,
			Notify:       input.Body.Notify,
		}
		if actionType == domain.ActionDelete {
			params.DeleteMode = domain.DeleteMode(input.Body.DeleteMode)
			if params.DeleteMode == "" {
				params.DeleteMode = domain.DeleteSoft
			}
		}

		res, err := svc.ApplyBulk(ctx, input.Body.AccountIDs, actionType, params, actorID)
		if err != nil {
			return nil, mapError(err)
		}

		out := &BulkActionOutput{}
		out.Body.Succeeded = res.Succeeded
		if out.Body.Succeeded == nil {
			out.Body.Succeeded = []uuid.UUID{}
		}
		out.Body.Failed = make([]BulkOutcome, 0, len(res.Failed))
		for id, ferr := range res.Failed {
			out.Body.Failed = append(out.Body.Failed, BulkOutcome{AccountID: id, Error: ferr.Error()})
		}
		return out, nil
	})
}
