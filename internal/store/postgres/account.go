package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/warden/internal/domain"
)

const accountColumns = `id, email, name, phone, organization, position, password_hash,
	status, approval, rejection, suspension, deletion, version, created_at, updated_at`

type AccountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	approval, rejection, suspension, deletion, err := marshalSubStates(a)
	if err != nil {
		return fmt.Errorf("accountRepo.Create: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO accounts (id, email, name, phone, organization, position, password_hash,
		 status, approval, rejection, suspension, deletion, version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		a.ID, a.Email, a.Name, nilIfEmpty(a.Phone), nilIfEmpty(a.Organization), nilIfEmpty(a.Position),
		nilIfEmpty(a.PasswordHash), a.Status, approval, rejection, suspension, deletion,
		a.Version, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("accountRepo.Create: %w: %w", domain.ErrStorage, err)
	}

	return nil
}

func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)

	a, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("accountRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("accountRepo.GetByID: %w: %w", domain.ErrStorage, err)
	}

	return a, nil
}

func (r *AccountRepo) List(ctx context.Context, f domain.AccountFilter) ([]*domain.Account, error) {
	var (
		where []string
		args  []any
	)

	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, "status = $"+strconv.Itoa(len(args)))
	}
	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		n := strconv.Itoa(len(args))
		where = append(where, "(email ILIKE $"+n+" OR name ILIKE $"+n+")")
	}

	q := `SELECT ` + accountColumns + ` FROM accounts`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at, id"

	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 500
	}
	args = append(args, limit)
	q += " LIMIT $" + strconv.Itoa(len(args))
	if f.Offset > 0 {
		args = append(args, f.Offset)
		q += " OFFSET $" + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("accountRepo.List: %w: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		a, scanErr := scanAccount(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("accountRepo.List: %w", scanErr)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("accountRepo.List: %w: %w", domain.ErrStorage, err)
	}

	return accounts, nil
}

// CommitTransition writes the mutated account and its audit entry in one
// transaction. The update is guarded by the version the caller loaded; a
// zero-row update means a concurrent transition won, reported as
// domain.ErrConflict. On success the account's version is bumped in place.
func (r *AccountRepo) CommitTransition(ctx context.Context, a *domain.Account, entry *domain.AuditEntry) error {
	approval, rejection, suspension, deletion, err := marshalSubStates(a)
	if err != nil {
		return fmt.Errorf("accountRepo.CommitTransition: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("accountRepo.CommitTransition: begin: %w: %w", domain.ErrStorage, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx,
		`UPDATE accounts
		 SET email = $1, name = $2, phone = $3, organization = $4, position = $5,
		     password_hash = $6, status = $7, approval = $8, rejection = $9,
		     suspension = $10, deletion = $11, version = version + 1, updated_at = $12
		 WHERE id = $13 AND version = $14`,
		a.Email, a.Name, nilIfEmpty(a.Phone), nilIfEmpty(a.Organization), nilIfEmpty(a.Position),
		nilIfEmpty(a.PasswordHash), a.Status, approval, rejection, suspension, deletion,
		a.UpdatedAt, a.ID, a.Version,
	)
	if err != nil {
		return fmt.Errorf("accountRepo.CommitTransition: update: %w: %w", domain.ErrStorage, err)
	}
	if tag.RowsAffected() == 0 {
		// Stale version or row removed meanwhile; the caller reloads.
		return fmt.Errorf("accountRepo.CommitTransition: %w", domain.ErrConflict)
	}

	if err := insertAuditEntry(ctx, tx, entry); err != nil {
		return fmt.Errorf("accountRepo.CommitTransition: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("accountRepo.CommitTransition: commit: %w: %w", domain.ErrStorage, err)
	}

	a.Version++

	return nil
}

// HardDelete writes the audit entry and removes the account row in one
// transaction, so the trail survives the record's disappearance. The delete
// carries the same version guard as CommitTransition: zero rows means a
// concurrent transition won, reported as domain.ErrConflict, and the
// rollback discards the audit entry with it.
func (r *AccountRepo) HardDelete(ctx context.Context, a *domain.Account, entry *domain.AuditEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("accountRepo.HardDelete: begin: %w: %w", domain.ErrStorage, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := insertAuditEntry(ctx, tx, entry); err != nil {
		return fmt.Errorf("accountRepo.HardDelete: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM accounts WHERE id = $1 AND version = $2`, a.ID, a.Version)
	if err != nil {
		return fmt.Errorf("accountRepo.HardDelete: delete: %w: %w", domain.ErrStorage, err)
	}
	if tag.RowsAffected() == 0 {
		// Stale version or row removed meanwhile; the caller reloads.
		return fmt.Errorf("accountRepo.HardDelete: %w", domain.ErrConflict)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("accountRepo.HardDelete: commit: %w: %w", domain.ErrStorage, err)
	}

	return nil
}

func marshalSubStates(a *domain.Account) (approval, rejection, suspension, deletion []byte, err error) {
	if approval, err = marshalNullable(a.Approval); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal approval: %w", err)
	}
	if rejection, err = marshalNullable(a.Rejection); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal rejection: %w", err)
	}
	if suspension, err = marshalNullable(a.Suspension); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal suspension: %w", err)
	}
	if deletion, err = marshalNullable(a.Deletion); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal deletion: %w", err)
	}
	return approval, rejection, suspension, deletion, nil
}

func marshalNullable[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		a                                         domain.Account
		phone, organization, position, pwHash     *string
		approval, rejection, suspension, deletion []byte
	)

	err := row.Scan(
		&a.ID, &a.Email, &a.Name, &phone, &organization, &position, &pwHash,
		&a.Status, &approval, &rejection, &suspension, &deletion,
		&a.Version, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Phone = derefStr(phone)
	a.Organization = derefStr(organization)
	a.Position = derefStr(position)
	a.PasswordHash = derefStr(pwHash)

	if err := unmarshalNullable(approval, &a.Approval); err != nil {
		return nil, fmt.Errorf("unmarshal approval: %w", err)
	}
	if err := unmarshalNullable(rejection, &a.Rejection); err != nil {
		return nil, fmt.Errorf("unmarshal rejection: %w", err)
	}
	if err := unmarshalNullable(suspension, &a.Suspension); err != nil {
		return nil, fmt.Errorf("unmarshal suspension: %w", err)
	}
	if err := unmarshalNullable(deletion, &a.Deletion); err != nil {
		return nil, fmt.Errorf("unmarshal deletion: %w", err)
	}

	return &a, nil
}

func unmarshalNullable[T any](raw []byte, dst **T) error {
	if len(raw) == 0 {
		return nil
	}
	v := new(T)
	if err := json.Unmarshal(raw, v); err != nil {
		return err
	}
	*dst = v
	return nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
