package domain

import (
	"context"
	"time"
)

type ChangeState string

const (
	ChangeStatePending  ChangeState = "pending"
	ChangeStateApproved ChangeState = "approved"
	ChangeStateRejected ChangeState = "rejected"
)

// Resolved reports whether the state is terminal. Approved and rejected
// changes never transition again; duplicate approve/reject signals are
// answered with the current state instead of re-running repository mutations.
func (s ChangeState) Resolved() bool {
	return s == ChangeStateApproved || s == ChangeStateRejected
}

// ValidTransition checks if a change state transition is allowed.
// Allowed: pending->approved, pending->rejected. Terminal states absorb.
func (s ChangeState) ValidTransition(to ChangeState) bool {
	if s != ChangeStatePending {
		return false
	}
	return to == ChangeStateApproved || to == ChangeStateRejected
}

// PendingChange is one outstanding proposal produced by an agent run.
// At most one change in state pending exists per caller at any time.
type PendingChange struct {
	ID             string      `json:"id"`
	CallerID       string      `json:"caller_id"`
	Prompt         string      `json:"prompt"`
	State          ChangeState `json:"state"`
	AgentSessionID string      `json:"agent_session_id,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	ResolvedAt     *time.Time  `json:"resolved_at,omitempty"`
}

type ChangeRepository interface {
	// CreatePending stores a new pending change for the caller. Returns
	// ErrPendingChangeExists when the caller already has one.
	CreatePending(ctx context.Context, c *PendingChange) error

	// GetPending returns the caller's current pending change, or ErrNotFound.
	GetPending(ctx context.Context, callerID string) (*PendingChange, error)

	// Get returns a change (pending or resolved) by id, or ErrNotFound.
	Get(ctx context.Context, callerID, changeID string) (*PendingChange, error)

	// Resolve moves the caller's pending change to a terminal state and
	// clears the pending slot. The resolved change stays retrievable via Get
	// so duplicate approval signals can be answered idempotently.
	Resolve(ctx context.Context, callerID, changeID string, state ChangeState) error
}
