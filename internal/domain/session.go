package domain

import (
	"context"
	"time"
)

// Session is the per-caller record of an ongoing agent conversation.
// AgentSessionID is the opaque resume token issued by the agent process;
// empty means the next task starts a fresh conversation. TurnCount is
// monotonically non-decreasing until compaction or an explicit clear.
type Session struct {
	CallerID       string    `json:"caller_id"`
	AgentSessionID string    `json:"agent_session_id,omitempty"`
	TurnCount      int       `json:"turn_count"`
	LastActive     time.Time `json:"last_active"`
}

type SessionRepository interface {
	// Get returns the caller's session, or ErrNotFound when none exists.
	Get(ctx context.Context, callerID string) (*Session, error)

	// Save upserts the caller's session.
	Save(ctx context.Context, s *Session) error

	// Delete removes the caller's session. Deleting a missing session is not
	// an error.
	Delete(ctx context.Context, callerID string) error
}
