package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stewardhq/steward/internal/domain"
)

// Store holds the approval audit trail. Sessions and pending changes live in
// redis; postgres keeps only the append-only history records.
type Store struct {
	pool    *pgxpool.Pool
	history *ApprovalHistoryRepo
}

func New(ctx context.Context, dsn string, maxConns int32, retainPerCaller int) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	s := &Store{
		pool:    pool,
		history: NewApprovalHistoryRepo(pool, retainPerCaller),
	}

	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: %w", err)
	}

	return s, nil
}

// ensureSchema creates the audit table on first start. The single table
// makes external migration tooling unnecessary.
func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS approval_records (
			change_id  text        NOT NULL,
			caller_id  text        NOT NULL,
			prompt     text        NOT NULL,
			state      text        NOT NULL,
			created_at timestamptz NOT NULL,
			PRIMARY KEY (caller_id, change_id)
		)`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) History() domain.ApprovalHistoryRepository { return s.history }
