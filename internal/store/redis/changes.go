package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stewardhq/steward/internal/domain"
)

// resolvedChangeTTL bounds how long resolved changes stay retrievable for
// idempotent answers to duplicate approval signals.
const resolvedChangeTTL = 7 * 24 * time.Hour

// ChangeRepo implements domain.ChangeRepository on redis. The single-pending
// invariant is enforced with SETNX on the caller's pending key.
type ChangeRepo struct {
	client *redis.Client
}

func (r *ChangeRepo) CreatePending(ctx context.Context, c *domain.PendingChange) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("changeRepo.CreatePending: marshal: %w", err)
	}

	set, err := r.client.SetNX(ctx, PendingChangeKey(c.CallerID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("changeRepo.CreatePending: %w", err)
	}
	if !set {
		return fmt.Errorf("changeRepo.CreatePending: %w", domain.ErrPendingChangeExists)
	}
	return nil
}

func (r *ChangeRepo) GetPending(ctx context.Context, callerID string) (*domain.PendingChange, error) {
	c, err := r.get(ctx, PendingChangeKey(callerID))
	if err != nil {
		return nil, fmt.Errorf("changeRepo.GetPending: %w", err)
	}
	return c, nil
}

func (r *ChangeRepo) Get(ctx context.Context, callerID, changeID string) (*domain.PendingChange, error) {
	pending, err := r.get(ctx, PendingChangeKey(callerID))
	if err == nil && pending.ID == changeID {
		return pending, nil
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("changeRepo.Get: %w", err)
	}

	c, err := r.get(ctx, ChangeKey(callerID, changeID))
	if err != nil {
		return nil, fmt.Errorf("changeRepo.Get: %w", err)
	}
	return c, nil
}

func (r *ChangeRepo) Resolve(ctx context.Context, callerID, changeID string, state domain.ChangeState) error {
	pending, err := r.get(ctx, PendingChangeKey(callerID))
	if err != nil {
		return fmt.Errorf("changeRepo.Resolve: %w", err)
	}
	if pending.ID != changeID {
		return fmt.Errorf("changeRepo.Resolve: %w", domain.ErrNotFound)
	}

	now := time.Now()
	pending.State = state
	pending.ResolvedAt = &now

	data, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("changeRepo.Resolve: marshal: %w", err)
	}

	// Write the resolved record before clearing the pending slot so a crash
	// between the two can only leave a duplicate, never a lost change.
	if err := r.client.Set(ctx, ChangeKey(callerID, changeID), data, resolvedChangeTTL).Err(); err != nil {
		return fmt.Errorf("changeRepo.Resolve: %w", err)
	}
	if err := r.client.Del(ctx, PendingChangeKey(callerID)).Err(); err != nil {
		return fmt.Errorf("changeRepo.Resolve: %w", err)
	}
	return nil
}

func (r *ChangeRepo) get(ctx context.Context, key string) (*domain.PendingChange, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var c domain.PendingChange
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return &c, nil
}
