package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stewardhq/steward/internal/domain"
)

const defaultRetainPerCaller = 50

// ApprovalHistoryRepo implements domain.ApprovalHistoryRepository. Retention
// is bounded per caller: each append evicts entries beyond the newest N.
type ApprovalHistoryRepo struct {
	pool   *pgxpool.Pool
	retain int
}

func NewApprovalHistoryRepo(pool *pgxpool.Pool, retainPerCaller int) *ApprovalHistoryRepo {
	if retainPerCaller <= 0 {
		retainPerCaller = defaultRetainPerCaller
	}
	return &ApprovalHistoryRepo{pool: pool, retain: retainPerCaller}
}

func (r *ApprovalHistoryRepo) Append(ctx context.Context, rec *domain.ApprovalRecord) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO approval_records (change_id, caller_id, prompt, state, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		rec.ChangeID, rec.CallerID, rec.Prompt, rec.State, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("approvalHistoryRepo.Append: %w", err)
	}

	// Evict the caller's oldest entries beyond the retention bound.
	_, err = r.pool.Exec(ctx,
		`DELETE FROM approval_records
		 WHERE caller_id = $1 AND change_id NOT IN (
		   SELECT change_id FROM approval_records
		   WHERE caller_id = $1
		   ORDER BY created_at DESC
		   LIMIT $2
		 )`,
		rec.CallerID, r.retain,
	)
	if err != nil {
		return fmt.Errorf("approvalHistoryRepo.Append: evict: %w", err)
	}

	return nil
}

func (r *ApprovalHistoryRepo) ListRecent(ctx context.Context, callerID string, limit int) ([]*domain.ApprovalRecord, error) {
	if limit <= 0 || limit > r.retain {
		limit = r.retain
	}

	rows, err := r.pool.Query(ctx,
		`SELECT change_id, caller_id, prompt, state, created_at
		 FROM approval_records WHERE caller_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		callerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("approvalHistoryRepo.ListRecent: %w", err)
	}
	defer rows.Close()

	return scanApprovalRecords(rows, "approvalHistoryRepo.ListRecent")
}

func scanApprovalRecords(rows pgx.Rows, caller string) ([]*domain.ApprovalRecord, error) {
	var records []*domain.ApprovalRecord
	for rows.Next() {
		var rec domain.ApprovalRecord
		if err := rows.Scan(
			&rec.ChangeID, &rec.CallerID, &rec.Prompt, &rec.State, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return records, nil
}
