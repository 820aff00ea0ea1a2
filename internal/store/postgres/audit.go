package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/warden/internal/domain"
)

type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

func (r *AuditRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*domain.AuditEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, account_id, action, actor_type, actor_id, reason, detail, occurred_at
		 FROM audit_log WHERE account_id = $1
		 ORDER BY occurred_at DESC, id
		 LIMIT $2 OFFSET $3`,
		accountID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("auditRepo.ListByAccount: %w: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	return scanAuditEntries(rows, "auditRepo.ListByAccount")
}

func (r *AuditRepo) List(ctx context.Context, limit, offset int) ([]*domain.AuditEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, account_id, action, actor_type, actor_id, reason, detail, occurred_at
		 FROM audit_log
		 ORDER BY occurred_at DESC, id
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("auditRepo.List: %w: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	return scanAuditEntries(rows, "auditRepo.List")
}

// execer is the slice of pgx.Tx the audit insert needs. Entries are only
// ever written inside the account repo's commit transactions.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertAuditEntry(ctx context.Context, db execer, entry *domain.AuditEntry) error {
	detail, err := json.Marshal(entry.Detail)
	if err != nil {
		return fmt.Errorf("insert audit entry: marshal detail: %w", err)
	}

	_, err = db.Exec(ctx,
		`INSERT INTO audit_log (id, account_id, action, actor_type, actor_id, reason, detail, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.AccountID, entry.Action, entry.ActorType, entry.ActorID,
		nilIfEmpty(entry.Reason), detail, entry.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w: %w", domain.ErrStorage, err)
	}

	return nil
}

func scanAuditEntries(rows pgx.Rows, caller string) ([]*domain.AuditEntry, error) {
	var entries []*domain.AuditEntry
	for rows.Next() {
		var (
			e      domain.AuditEntry
			reason *string
			detail []byte
		)

		if err := rows.Scan(
			&e.ID, &e.AccountID, &e.Action, &e.ActorType, &e.ActorID,
			&reason, &detail, &e.OccurredAt,
		); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		e.Reason = derefStr(reason)
		if err := json.Unmarshal(detail, &e.Detail); err != nil {
			return nil, fmt.Errorf("%s: unmarshal detail: %w", caller, err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w: %w", caller, domain.ErrStorage, err)
	}

	return entries, nil
}
