package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stewardhq/steward/internal/approval"
	"github.com/stewardhq/steward/internal/domain"
	"github.com/stewardhq/steward/internal/ratelimit"
	"github.com/stewardhq/steward/internal/session"
	redisstore "github.com/stewardhq/steward/internal/store/redis"
)

// Executor runs one agent invocation. Satisfied by agent.Executor; injected
// so the pipeline is testable with a fake.
type Executor interface {
	Execute(ctx context.Context, req domain.TaskRequest) *domain.ExecutionResult
}

// Publisher abstracts the pub/sub publish operation.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// SubmitResult is the outcome of one task submission. Exactly one of the
// three shapes applies: rate limited, blocked by an unresolved pending
// change, or an execution result (with a pending change when it succeeded).
type SubmitResult struct {
	// RateLimited marks a denied admission. RetryMessage is empty when the
	// denial notice is suppressed by the cooldown.
	RateLimited  bool   `json:"rate_limited,omitempty"`
	RetryMessage string `json:"retry_message,omitempty"`

	// BlockedBy is the caller's unresolved pending change that must be
	// approved, rejected, or discarded before a new task starts.
	BlockedBy *domain.PendingChange `json:"blocked_by,omitempty"`

	Execution *domain.ExecutionResult `json:"execution,omitempty"`
	Change    *domain.PendingChange   `json:"change,omitempty"`
}

// Status summarizes a caller's session and approval state.
type Status struct {
	AgentSessionID string                   `json:"agent_session_id,omitempty"`
	TurnCount      int                      `json:"turn_count"`
	Pending        *domain.PendingChange    `json:"pending,omitempty"`
	History        []*domain.ApprovalRecord `json:"history,omitempty"`
}

// Service drives the full task pipeline: admission, session resolution,
// agent execution, and pending-change creation, plus the approve/reject and
// status surface any transport can bind to.
type Service struct {
	limiter   *ratelimit.Limiter
	tracker   *session.Tracker
	executor  Executor
	approvals *approval.Service
	history   domain.ApprovalHistoryRepository
	pubsub    Publisher
}

func NewService(
	limiter *ratelimit.Limiter,
	tracker *session.Tracker,
	executor Executor,
	approvals *approval.Service,
	history domain.ApprovalHistoryRepository,
	pubsub Publisher,
) *Service {
	return &Service{
		limiter:   limiter,
		tracker:   tracker,
		executor:  executor,
		approvals: approvals,
		history:   history,
		pubsub:    pubsub,
	}
}

// SubmitTask runs one prompt through the pipeline. Agent-side failures come
// back as failed ExecutionResults; a returned error means the pipeline state
// itself is unavailable (durable store down).
func (s *Service) SubmitTask(ctx context.Context, callerID, prompt string) (*SubmitResult, error) {
	decision := s.limiter.Check(callerID)
	if !decision.Allowed {
		res := &SubmitResult{RateLimited: true}
		if decision.Notify {
			res.RetryMessage = decision.RetryMessage()
		}
		return res, nil
	}

	pending, err := s.approvals.Pending(ctx, callerID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("core.Service.SubmitTask: %w", err)
	}
	if pending != nil {
		return &SubmitResult{BlockedBy: pending}, nil
	}

	resumeToken, _, err := s.tracker.Resolve(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("core.Service.SubmitTask: %w", err)
	}

	s.publish(ctx, callerID, map[string]string{
		"type":   "task_started",
		"prompt": prompt,
	})

	result := s.executor.Execute(ctx, domain.TaskRequest{
		CallerID:    callerID,
		Prompt:      prompt,
		ResumeToken: resumeToken,
	})

	if !result.Success {
		s.publish(ctx, callerID, map[string]string{
			"type":  "task_failed",
			"error": result.ErrorDetail,
		})
		return &SubmitResult{Execution: result}, nil
	}

	if err := s.tracker.Record(ctx, callerID, result); err != nil {
		return nil, fmt.Errorf("core.Service.SubmitTask: %w", err)
	}

	change, err := s.approvals.Create(ctx, callerID, prompt, result.AgentSessionID)
	if err != nil {
		// A concurrent submission can win the pending slot between the gate
		// check and creation; answer the race the same way the gate does.
		if errors.Is(err, domain.ErrPendingChangeExists) {
			pending, pendErr := s.approvals.Pending(ctx, callerID)
			if pendErr != nil {
				return nil, fmt.Errorf("core.Service.SubmitTask: %w", pendErr)
			}
			return &SubmitResult{BlockedBy: pending}, nil
		}
		return nil, fmt.Errorf("core.Service.SubmitTask: %w", err)
	}

	s.publish(ctx, callerID, map[string]string{
		"type":      "task_completed",
		"change_id": change.ID,
	})

	return &SubmitResult{Execution: result, Change: change}, nil
}

// Approve resolves the caller's pending change, committing the working tree.
func (s *Service) Approve(ctx context.Context, callerID, changeID string) (*approval.Outcome, error) {
	outcome, err := s.approvals.Approve(ctx, callerID, changeID)
	if err != nil {
		return nil, fmt.Errorf("core.Service.Approve: %w", err)
	}

	if !outcome.AlreadyResolved {
		s.publish(ctx, callerID, map[string]string{
			"type":      "change_approved",
			"change_id": changeID,
		})
	}
	return outcome, nil
}

// Reject resolves the caller's pending change, rolling the tree back.
func (s *Service) Reject(ctx context.Context, callerID, changeID string) (*approval.Outcome, error) {
	outcome, err := s.approvals.Reject(ctx, callerID, changeID)
	if err != nil {
		return nil, fmt.Errorf("core.Service.Reject: %w", err)
	}

	if !outcome.AlreadyResolved {
		s.publish(ctx, callerID, map[string]string{
			"type":      "change_rejected",
			"change_id": changeID,
		})
	}
	return outcome, nil
}

// GetStatus returns the caller's session and pending-change summary.
func (s *Service) GetStatus(ctx context.Context, callerID string) (*Status, error) {
	token, turns, err := s.tracker.Resolve(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("core.Service.GetStatus: %w", err)
	}

	status := &Status{
		AgentSessionID: token,
		TurnCount:      turns,
	}

	pending, err := s.approvals.Pending(ctx, callerID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("core.Service.GetStatus: %w", err)
	}
	status.Pending = pending

	history, err := s.history.ListRecent(ctx, callerID, 10)
	if err != nil {
		return nil, fmt.Errorf("core.Service.GetStatus: %w", err)
	}
	status.History = history

	return status, nil
}

// History lists the caller's most recent approval records, newest first.
func (s *Service) History(ctx context.Context, callerID string, limit int) ([]*domain.ApprovalRecord, error) {
	records, err := s.history.ListRecent(ctx, callerID, limit)
	if err != nil {
		return nil, fmt.Errorf("core.Service.History: %w", err)
	}
	return records, nil
}

// Diff returns the working tree diff and status for review.
func (s *Service) Diff(ctx context.Context) (diff, status string, err error) {
	return s.approvals.Diff(ctx)
}

// ClearSession drops the caller's agent conversation. Approval history and
// any pending change are untouched.
func (s *Service) ClearSession(ctx context.Context, callerID string) error {
	if err := s.tracker.Clear(ctx, callerID); err != nil {
		return fmt.Errorf("core.Service.ClearSession: %w", err)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, callerID string, evt map[string]string) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	channel := redisstore.TaskChannel(callerID)
	if pubErr := s.pubsub.Publish(pubCtx, channel, payload); pubErr != nil {
		log.Error().Err(pubErr).Str("channel", channel).Msg("core: failed to publish event")
	}
}
