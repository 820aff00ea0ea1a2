package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/warden/internal/domain"
	"github.com/gosuda/warden/internal/server/middleware"
)

// AccountView is the wire shape of an account. The password hash never
// leaves the service.
type AccountView struct {
	ID           uuid.UUID          `json:"id"`
	Email        string             `json:"email"`
	Name         string             `json:"name"`
	Phone        string             `json:"phone,omitempty"`
	Organization string             `json:"organization,omitempty"`
	Position     string             `json:"position,omitempty"`
	Status       domain.Status      `json:"status"`
	Approval     *domain.Approval   `json:"approval,omitempty"`
	Rejection    *domain.Rejection  `json:"rejection,omitempty"`
	Suspension   *domain.Suspension `json:"suspension,omitempty"`
	Deletion     *domain.Deletion   `json:"deletion,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

func viewOf(a *domain.Account) *AccountView {
	return &AccountView{
		ID:           a.ID,
		Email:        a.Email,
		Name:         a.Name,
		Phone:        a.Phone,
		Organization: a.Organization,
		Position:     a.Position,
		Status:       a.Status,
		Approval:     a.Approval,
		Rejection:    a.Rejection,
		Suspension:   a.Suspension,
		Deletion:     a.Deletion,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// mapError translates domain sentinels into HTTP problem responses.
func mapError(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return huma.Error404NotFound("account not found")
	case errors.Is(err, domain.ErrInvalidParams):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, domain.ErrIllegalTransition):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return huma.Error403Forbidden("action not permitted")
	case errors.Is(err, domain.ErrConflict):
		return huma.Error409Conflict("account changed concurrently, please retry")
	case errors.Is(err, domain.ErrStorage):
		return huma.Error503ServiceUnavailable("storage temporarily unavailable, please retry")
	default:
		return huma.Error500InternalServerError("internal error")
	}
}

func actorFrom(ctx context.Context) (uuid.UUID, error) {
	actorID, ok := middleware.ActorIDFromContext(ctx)
	if !ok {
		return uuid.Nil, huma.Error401Unauthorized("missing actor context")
	}
	return actorID, nil
}

type RegisterAccountInput struct {
	Body struct {
		Email    string `json:"email" format:"email" doc:"Account email"`
		Name     string `json:"name" minLength:"1" maxLength:"200" doc:"Display name"`
		Password string `json:"password" minLength:"8" doc:"Initial password"`
	}
}

type AccountOutput struct {
	Body *AccountView
}

type GetAccountInput struct {
	ID uuid.UUID `path:"id" doc:"Account ID"`
}

type ListAccountsInput struct {
	Status string `query:"status" doc:"Filter by status"`
	Query  string `query:"q" doc:"Match email or name"`
	Limit  int    `query:"limit" doc:"Page size (max 500)"`
	Offset int    `query:"offset" doc:"Page offset"`
}

type ListAccountsOutput struct {
	Body []*AccountView
}

type ApproveAccountInput struct {
	ID   uuid.UUID `path:"id" doc:"Account ID"`
	Body struct {
		Notify *bool `json:"notify,omitempty" doc:"Override the notification default"`
	}
}

type RejectAccountInput struct {
	ID   uuid.UUID `path:"id" doc:"Account ID"`
	Body struct {
		Reason string `json:"reason" minLength:"1" doc:"Rejection reason"`
		Notify *bool  `json:"notify,omitempty" doc:"Override the notification default"`
	}
}

type SuspendAccountInput struct {
	ID   uuid.UUID `path:"id" doc:"Account ID"`
	Body struct {
		Reason       string     `json:"reason" minLength:"1" doc:"Suspension reason"`
		DurationMode string     `json:"duration_mode" enum:"indefinite,period,until_date" doc:"Suspension duration mode"`
		DurationDays int        `json:"duration_days,omitempty" doc:"Days, required for period mode"`
		Until        *time.Time `json:"until,omitempty" doc:"End date, required for until_date mode"`
		Notify       *bool      `json:"notify,omitempty" doc:"Override the notification default"`
	}
}

type UnsuspendAccountInput struct {
	ID   uuid.UUID `path:"id" doc:"Account ID"`
	Body struct {
		Notify *bool `json:"notify,omitempty" doc:"Override the notification default"`
	}
}

type DeleteAccountInput struct {
	ID     uuid.UUID `path:"id" doc:"Account ID"`
	Mode   string    `query:"mode" enum:"soft,hard" doc:"Deletion mode, defaults to soft"`
	Reason string    `query:"reason" required:"true" minLength:"1" doc:"Deletion reason"`
}

type DeleteAccountOutput struct {
	Body struct {
		Status domain.Status `json:"status"`
	}
}

type RestoreAccountInput struct {
	ID   uuid.UUID `path:"id" doc:"Account ID"`
	Body struct {
		Notify *bool `json:"notify,omitempty" doc:"Override the notification default"`
	}
}

type UpdateAccountInput struct {
	ID   uuid.UUID `path:"id" doc:"Account ID"`
	Body struct {
		Name         *string `json:"name,omitempty" maxLength:"200" doc:"Display name"`
		Email        *string `json:"email,omitempty" format:"email" doc:"Email"`
		Phone        *string `json:"phone,omitempty" doc:"Phone number"`
		Organization *string `json:"organization,omitempty" doc:"Organization"`
		Position     *string `json:"position,omitempty" doc:"Position"`
		Status       *string `json:"status,omitempty" doc:"Direct status override (administrative)"`
	}
}

type ResetPasswordInput struct {
	ID uuid.UUID `path:"id" doc:"Account ID"`
}

type ResetPasswordOutput struct {
	Body struct {
		TemporaryPassword string `json:"temporary_password" doc:"Shown exactly once"`
	}
}

// RegisterPublicRoutes mounts the unauthenticated registration endpoint.
func RegisterPublicRoutes(api huma.API, svc Moderator) {
	huma.Register(api, huma.Operation{
		OperationID:   "register-account",
		Method:        http.MethodPost,
		Path:          "/accounts",
		Summary:       "Register a new account (created pending approval)",
		Tags:          []string{"Accounts"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *RegisterAccountInput) (*AccountOutput, error) {
		acct, err := svc.Register(ctx, input.Body.Email, input.Body.Name, input.Body.Password)
		if err != nil {
			return nil, mapError(err)
		}
		return &AccountOutput{Body: viewOf(acct)}, nil
	})
}

// RegisterAccountRoutes mounts the admin moderation surface.
func RegisterAccountRoutes(api huma.API, svc Moderator) {
	huma.Register(api, huma.Operation{
		OperationID: "list-accounts",
		Method:      http.MethodGet,
		Path:        "/accounts",
		Summary:     "List accounts with optional status and text filters",
		Tags:        []string{"Accounts"},
	}, func(ctx context.Context, input *ListAccountsInput) (*ListAccountsOutput, error) {
		f := domain.AccountFilter{
			Status: domain.Status(input.Status),
			Query:  input.Query,
			Limit:  input.Limit,
			Offset: input.Offset,
		}
		if input.Status != "" && !f.Status.Valid() {
			return nil, huma.Error422UnprocessableEntity("unknown status filter")
		}

		accts, err := svc.List(ctx, f)
		if err != nil {
			return nil, mapError(err)
		}

		views := make([]*AccountView, 0, len(accts))
		for _, a := range accts {
			views = append(views, viewOf(a))
		}
		return &ListAccountsOutput{Body: views}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-account",
		Method:      http.MethodGet,
		Path:        "/accounts/{id}",
		Summary:     "Get one account",
		Tags:        []string{"Accounts"},
	}, func(ctx context.Context, input *GetAccountInput) (*AccountOutput, error) {
		acct, err := svc.Get(ctx, input.ID)
		if err != nil {
			return nil, mapError(err)
		}
		return &AccountOutput{Body: viewOf(acct)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "approve-account",
		Method:      http.MethodPost,
		Path:        "/accounts/{id}/approve",
		Summary:     "Approve a pending account",
		Tags:        []string{"Moderation"},
	}, func(ctx context.Context, input *ApproveAccountInput) (*AccountOutput, error) {
		return applyAction(ctx, svc, input.ID, domain.ActionApprove, domain.ActionParams{Notify: input.Body.Notify})
	})

	huma.Register(api, huma.Operation{
		OperationID: "reject-account",
		Method:      http.MethodPost,
		Path:        "/accounts/{id}/reject",
		Summary:     "Reject a pending account",
		Tags:        []string{"Moderation"},
	}, func(ctx context.Context, input *RejectAccountInput) (*AccountOutput, error) {
		return applyAction(ctx, svc, input.ID, domain.ActionReject, domain.ActionParams{
			Reason: input.Body.Reason,
			Notify: input.Body.Notify,
		})
	})

	huma.Register(api, huma.Operation{
		OperationID: "suspend-account",
		Method:      http.MethodPost,
		Path:        "/accounts/{id}/suspend",
		Summary:     "Suspend an active account",
		Tags:        []string{"Moderation"},
	}, func(ctx context.Context, input *SuspendAccountInput) (*AccountOutput, error) {
		return applyAction(ctx, svc, input.ID, domain.ActionSuspend, domain.ActionParams{
			Reason:       input.Body.Reason,
			DurationMode: domain.DurationMode(input.Body.DurationMode),
			DurationDays: input.Body.DurationDays,
			Until:        input.Body.Until,
			Notify:       input.Body.Notify,
		})
	})

	huma.Register(api, huma.Operation{
		OperationID: "unsuspend-account",
		Method:      http.MethodPost,
		Path:        "/accounts/{id}/unsuspend",
		Summary:     "Lift an account suspension",
		Tags:        []string{"Moderation"},
	}, func(ctx context.Context, input *UnsuspendAccountInput) (*AccountOutput, error) {
		return applyAction(ctx, svc, input.ID, domain.ActionUnsuspend, domain.ActionParams{Notify: input.Body.Notify})
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-account",
		Method:      http.MethodDelete,
		Path:        "/accounts/{id}",
		Summary:     "Delete an account (soft by default, hard removes the record)",
		Tags:        []string{"Moderation"},
	}, func(ctx context.Context, input *DeleteAccountInput) (*DeleteAccountOutput, error) {
		actorID, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		mode := domain.DeleteMode(input.Mode)
		if input.Mode == "" {
			mode = domain.DeleteSoft
		}

		res, err := svc.Apply(ctx, domain.Action{
			Type:      domain.ActionDelete,
			AccountID: input.ID,
			ActorID:   actorID,
			Params: domain.ActionParams{
				Reason:     input.Reason,
				DeleteMode: mode,
			},
		})
		if err != nil {
			return nil, mapError(err)
		}

		out := &DeleteAccountOutput{}
		out.Body.Status = res.Status
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "restore-account",
		Method:      http.MethodPost,
		Path:        "/accounts/{id}/restore",
		Summary:     "Restore a soft-deleted account",
		Tags:        []string{"Moderation"},
	}, func(ctx context.Context, input *RestoreAccountInput) (*AccountOutput, error) {
		return applyAction(ctx, svc, input.ID, domain.ActionRestore, domain.ActionParams{Notify: input.Body.Notify})
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-account",
		Method:      http.MethodPatch,
		Path:        "/accounts/{id}",
		Summary:     "Patch profile fields; status may be overridden directly",
		Tags:        []string{"Moderation"},
	}, func(ctx context.Context, input *UpdateAccountInput) (*AccountOutput, error) {
		patch := &domain.ProfilePatch{
			Name:         input.Body.Name,
			Email:        input.Body.Email,
			Phone:        input.Body.Phone,
			Organization: input.Body.Organization,
			Position:     input.Body.Position,
		}
		if input.Body.Status != nil {
			s := domain.Status(*input.Body.Status)
			patch.Status = &s
		}

		return applyAction(ctx, svc, input.ID, domain.ActionUpdate, domain.ActionParams{Profile: patch})
	})

	huma.Register(api, huma.Operation{
		OperationID: "reset-account-password",
		Method:      http.MethodPost,
		Path:        "/accounts/{id}/password-reset",
		Summary:     "Issue a temporary password for an active account",
		Tags:        []string{"Moderation"},
	}, func(ctx context.Context, input *ResetPasswordInput) (*ResetPasswordOutput, error) {
		actorID, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		temp, err := svc.ResetPassword(ctx, input.ID, actorID)
		if err != nil {
			return nil, mapError(err)
		}

		out := &ResetPasswordOutput{}
		out.Body.TemporaryPassword = temp
		return out, nil
	})
}

func applyAction(ctx context.Context, svc Moderator, accountID uuid.UUID, typ domain.ActionType, params domain.ActionParams) (*AccountOutput, error) {
	actorID, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	res, err := svc.Apply(ctx, domain.Action{
		Type:      typ,
		AccountID: accountID,
		ActorID:   actorID,
		Params:    params,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return &AccountOutput{Body: viewOf(res.Account)}, nil
}
