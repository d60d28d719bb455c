package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stewardhq/steward/internal/domain"
)

const defaultCompactThreshold = 20

// Compactor asks the agent process to shrink an existing session's context.
type Compactor interface {
	Compact(ctx context.Context, agentSessionID string) error
}

// Tracker maps caller identities to ongoing agent conversations. The agent
// process is the source of truth for session continuity: a stored session id
// is only ever replaced by an explicit clear, never overwritten by a later
// result.
type Tracker struct {
	sessions  domain.SessionRepository
	compactor Compactor
	threshold int
}

func NewTracker(sessions domain.SessionRepository, compactor Compactor, compactThreshold int) *Tracker {
	if compactThreshold <= 0 {
		compactThreshold = defaultCompactThreshold
	}
	return &Tracker{
		sessions:  sessions,
		compactor: compactor,
		threshold: compactThreshold,
	}
}

// Resolve returns the caller's resume token (empty for a fresh conversation)
// and current turn count.
func (t *Tracker) Resolve(ctx context.Context, callerID string) (string, int, error) {
	s, err := t.sessions.Get(ctx, callerID)
	if errors.Is(err, domain.ErrNotFound) {
		return "", 0, nil
	}
	if err != nil {
		return "", 0, fmt.Errorf("session.Tracker.Resolve: %w", err)
	}
	return s.AgentSessionID, s.TurnCount, nil
}

// Record updates the caller's session after a successful execution: stores
// the session id when none was stored, increments the turn count, and runs
// compaction at the threshold. Compaction failure is non-fatal; the counter
// is left as-is so the next record retries.
func (t *Tracker) Record(ctx context.Context, callerID string, result *domain.ExecutionResult) error {
	s, err := t.sessions.Get(ctx, callerID)
	if errors.Is(err, domain.ErrNotFound) {
		s = &domain.Session{CallerID: callerID}
	} else if err != nil {
		return fmt.Errorf("session.Tracker.Record: %w", err)
	}

	if result.AgentSessionID != "" {
		switch {
		case s.AgentSessionID == "":
			s.AgentSessionID = result.AgentSessionID
		case s.AgentSessionID != result.AgentSessionID:
			log.Debug().
				Str("caller_id", callerID).
				Str("stored", s.AgentSessionID).
				Str("reported", result.AgentSessionID).
				Msg("session: ignoring divergent agent session id")
		}
	}

	s.TurnCount++
	s.LastActive = time.Now()

	if s.TurnCount >= t.threshold && s.AgentSessionID != "" {
		if compactErr := t.compactor.Compact(ctx, s.AgentSessionID); compactErr != nil {
			log.Warn().Err(compactErr).Str("caller_id", callerID).Msg("session: compaction failed")
		} else {
			s.TurnCount = 0
		}
	}

	if err := t.sessions.Save(ctx, s); err != nil {
		return fmt.Errorf("session.Tracker.Record: %w", err)
	}
	return nil
}

// Clear discards the caller's session identifier and turn count. Approval
// history is kept; only conversational state is dropped.
func (t *Tracker) Clear(ctx context.Context, callerID string) error {
	if err := t.sessions.Delete(ctx, callerID); err != nil {
		return fmt.Errorf("session.Tracker.Clear: %w", err)
	}
	return nil
}
