package v1_test

import (
	"context"

	"github.com/stewardhq/steward/internal/approval"
	"github.com/stewardhq/steward/internal/core"
	"github.com/stewardhq/steward/internal/domain"
	"github.com/stewardhq/steward/internal/server/middleware"
)

// callerCtx injects a caller identity into context for DoCtx.
func callerCtx(callerID string) context.Context {
	return context.WithValue(context.Background(), middleware.ContextKeyCallerID, callerID)
}

// mockPipeline implements v1.Pipeline with per-method funcs. Unset methods
// panic if called.
type mockPipeline struct {
	submitTaskFunc   func(ctx context.Context, callerID, prompt string) (*core.SubmitResult, error)
	approveFunc      func(ctx context.Context, callerID, changeID string) (*approval.Outcome, error)
	rejectFunc       func(ctx context.Context, callerID, changeID string) (*approval.Outcome, error)
	getStatusFunc    func(ctx context.Context, callerID string) (*core.Status, error)
	historyFunc      func(ctx context.Context, callerID string, limit int) ([]*domain.ApprovalRecord, error)
	diffFunc         func(ctx context.Context) (string, string, error)
	clearSessionFunc func(ctx context.Context, callerID string) error
}

func (m *mockPipeline) SubmitTask(ctx context.Context, callerID, prompt string) (*core.SubmitResult, error) {
	return m.submitTaskFunc(ctx, callerID, prompt)
}

func (m *mockPipeline) Approve(ctx context.Context, callerID, changeID string) (*approval.Outcome, error) {
	return m.approveFunc(ctx, callerID, changeID)
}

func (m *mockPipeline) Reject(ctx context.Context, callerID, changeID string) (*approval.Outcome, error) {
	return m.rejectFunc(ctx, callerID, changeID)
}

func (m *mockPipeline) GetStatus(ctx context.Context, callerID string) (*core.Status, error) {
	return m.getStatusFunc(ctx, callerID)
}

func (m *mockPipeline) History(ctx context.Context, callerID string, limit int) ([]*domain.ApprovalRecord, error) {
	return m.historyFunc(ctx, callerID, limit)
}

func (m *mockPipeline) Diff(ctx context.Context) (string, string, error) {
	return m.diffFunc(ctx)
}

func (m *mockPipeline) ClearSession(ctx context.Context, callerID string) error {
	return m.clearSessionFunc(ctx, callerID)
}
