package domain

import (
	"context"
	"time"
)

// ApprovalRecord is an append-only history entry written when a pending
// change reaches a terminal state. History is display/audit data only and is
// never consulted for control decisions.
type ApprovalRecord struct {
	ChangeID  string      `json:"change_id"`
	CallerID  string      `json:"caller_id"`
	Prompt    string      `json:"prompt"`
	State     ChangeState `json:"state"`
	CreatedAt time.Time   `json:"created_at"`
}

type ApprovalHistoryRepository interface {
	// Append records an entry, evicting the caller's oldest entries beyond
	// the store's retention bound.
	Append(ctx context.Context, rec *ApprovalRecord) error

	// ListRecent returns the caller's newest entries, most recent first.
	ListRecent(ctx context.Context, callerID string, limit int) ([]*ApprovalRecord, error)
}
