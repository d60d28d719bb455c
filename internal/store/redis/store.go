package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/stewardhq/steward/internal/domain"
)

// Store is the durable key-value store for per-caller session and
// pending-change state, plus the pub/sub fabric for live task events.
type Store struct {
	client   *redis.Client
	sessions *SessionRepo
	changes  *ChangeRepo
}

func New(ctx context.Context, addr, password string, db int) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis.New: ping: %w", err)
	}

	return &Store{
		client:   client,
		sessions: &SessionRepo{client: client},
		changes:  &ChangeRepo{client: client},
	}, nil
}

func (s *Store) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("redis.Store.Close: %w", err)
	}
	return nil
}

func (s *Store) Sessions() domain.SessionRepository { return s.sessions }
func (s *Store) Changes() domain.ChangeRepository   { return s.changes }

// SessionKey returns the key holding a caller's session record.
func SessionKey(callerID string) string {
	return "session:" + callerID
}

// PendingChangeKey returns the key holding a caller's single pending change.
func PendingChangeKey(callerID string) string {
	return "change:pending:" + callerID
}

// ChangeKey returns the key holding a resolved change, kept for idempotent
// answers to duplicate approval signals.
func ChangeKey(callerID, changeID string) string {
	return "change:" + callerID + ":" + changeID
}

// TaskChannel returns the pub/sub channel carrying a caller's live task
// events.
func TaskChannel(callerID string) string {
	return "task:" + callerID
}
