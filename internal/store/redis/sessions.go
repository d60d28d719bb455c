package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/stewardhq/steward/internal/domain"
)

// SessionRepo implements domain.SessionRepository on redis. Sessions are
// stored as JSON under SessionKey and survive process restarts.
type SessionRepo struct {
	client *redis.Client
}

func (r *SessionRepo) Get(ctx context.Context, callerID string) (*domain.Session, error) {
	data, err := r.client.Get(ctx, SessionKey(callerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("sessionRepo.Get: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sessionRepo.Get: %w", err)
	}

	var s domain.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("sessionRepo.Get: unmarshal: %w", err)
	}
	return &s, nil
}

func (r *SessionRepo) Save(ctx context.Context, s *domain.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("sessionRepo.Save: marshal: %w", err)
	}
	if err := r.client.Set(ctx, SessionKey(s.CallerID), data, 0).Err(); err != nil {
		return fmt.Errorf("sessionRepo.Save: %w", err)
	}
	return nil
}

func (r *SessionRepo) Delete(ctx context.Context, callerID string) error {
	if err := r.client.Del(ctx, SessionKey(callerID)).Err(); err != nil {
		return fmt.Errorf("sessionRepo.Delete: %w", err)
	}
	return nil
}
