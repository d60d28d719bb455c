package v1

import (
	"context"

	"github.com/stewardhq/steward/internal/approval"
	"github.com/stewardhq/steward/internal/core"
	"github.com/stewardhq/steward/internal/domain"
)

// Pipeline abstracts the task pipeline for handler testing.
// *core.Service satisfies this interface.
type Pipeline interface {
	SubmitTask(ctx context.Context, callerID, prompt string) (*core.SubmitResult, error)
	Approve(ctx context.Context, callerID, changeID string) (*approval.Outcome, error)
	Reject(ctx context.Context, callerID, changeID string) (*approval.Outcome, error)
	GetStatus(ctx context.Context, callerID string) (*core.Status, error)
	History(ctx context.Context, callerID string, limit int) ([]*domain.ApprovalRecord, error)
	Diff(ctx context.Context) (diff, status string, err error)
	ClearSession(ctx context.Context, callerID string) error
}
