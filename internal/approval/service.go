package approval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/stewardhq/steward/internal/domain"
)

// maxCommitSubject bounds the prompt excerpt embedded in commit messages.
const maxCommitSubject = 72

// GitClient is the subset of the git working-tree client the state machine
// drives. Diff and Status are non-mutating and callable in any state.
type GitClient interface {
	Dirty(ctx context.Context) (bool, error)
	AddAll(ctx context.Context) error
	Commit(ctx context.Context, message string) error
	ResetHard(ctx context.Context) error
	CleanUntracked(ctx context.Context) error
	Status(ctx context.Context) (string, error)
	Diff(ctx context.Context) (string, error)
}

// Outcome reports the result of an approve/reject transition.
type Outcome struct {
	ChangeID string             `json:"change_id"`
	State    domain.ChangeState `json:"state"`

	// AlreadyResolved marks a duplicate or mismatched signal that was
	// answered with the change's prior state; no repository mutation ran.
	AlreadyResolved bool `json:"already_resolved,omitempty"`

	// NoChanges marks a transition that found the working tree already
	// clean, so no commit or rollback ran.
	NoChanges bool `json:"no_changes,omitempty"`
}

// Service is the safety-gated approve/reject state machine. All repository
// mutations run under a single mutex: the working tree is one shared
// workspace and a transition assumes exclusive write access.
type Service struct {
	changes domain.ChangeRepository
	history domain.ApprovalHistoryRepository
	git     GitClient
	mu      sync.Mutex
}

func NewService(changes domain.ChangeRepository, history domain.ApprovalHistoryRepository, git GitClient) *Service {
	return &Service{
		changes: changes,
		history: history,
		git:     git,
	}
}

// Create stages a new pending change for the caller. Returns
// domain.ErrPendingChangeExists when an unresolved change is outstanding; a
// new request must never silently discard one.
func (s *Service) Create(ctx context.Context, callerID, prompt, agentSessionID string) (*domain.PendingChange, error) {
	change := &domain.PendingChange{
		ID:             NewChangeID(),
		CallerID:       callerID,
		Prompt:         prompt,
		State:          domain.ChangeStatePending,
		AgentSessionID: agentSessionID,
		CreatedAt:      time.Now(),
	}

	if err := s.changes.CreatePending(ctx, change); err != nil {
		return nil, fmt.Errorf("approval.Service.Create: %w", err)
	}
	return change, nil
}

// Approve commits the working tree for the caller's current pending change.
// A clean tree still approves, reported as NoChanges. Duplicate or mismatched
// ids are answered idempotently with the change's current state.
func (s *Service) Approve(ctx context.Context, callerID, changeID string) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	change, resolved, err := s.matchPending(ctx, callerID, changeID)
	if err != nil {
		return nil, fmt.Errorf("approval.Service.Approve: %w", err)
	}
	if resolved != nil {
		return resolved, nil
	}

	dirty, err := s.git.Dirty(ctx)
	if err != nil {
		// Repository errors leave the change pending.
		return nil, fmt.Errorf("approval.Service.Approve: %w", err)
	}

	if dirty {
		if err := s.git.AddAll(ctx); err != nil {
			return nil, fmt.Errorf("approval.Service.Approve: %w", err)
		}
		if err := s.git.Commit(ctx, commitMessage(change.Prompt)); err != nil {
			return nil, fmt.Errorf("approval.Service.Approve: %w", err)
		}
	}

	if err := s.resolve(ctx, change, domain.ChangeStateApproved); err != nil {
		return nil, fmt.Errorf("approval.Service.Approve: %w", err)
	}

	return &Outcome{
		ChangeID:  changeID,
		State:     domain.ChangeStateApproved,
		NoChanges: !dirty,
	}, nil
}

// Reject discards the working tree changes for the caller's current pending
// change, resetting tracked files and removing untracked ones.
func (s *Service) Reject(ctx context.Context, callerID, changeID string) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	change, resolved, err := s.matchPending(ctx, callerID, changeID)
	if err != nil {
		return nil, fmt.Errorf("approval.Service.Reject: %w", err)
	}
	if resolved != nil {
		return resolved, nil
	}

	dirty, err := s.git.Dirty(ctx)
	if err != nil {
		return nil, fmt.Errorf("approval.Service.Reject: %w", err)
	}

	if dirty {
		if err := s.git.ResetHard(ctx); err != nil {
			return nil, fmt.Errorf("approval.Service.Reject: %w", err)
		}
		if err := s.git.CleanUntracked(ctx); err != nil {
			return nil, fmt.Errorf("approval.Service.Reject: %w", err)
		}
	}

	if err := s.resolve(ctx, change, domain.ChangeStateRejected); err != nil {
		return nil, fmt.Errorf("approval.Service.Reject: %w", err)
	}

	return &Outcome{
		ChangeID:  changeID,
		State:     domain.ChangeStateRejected,
		NoChanges: !dirty,
	}, nil
}

// Pending returns the caller's current pending change, or domain.ErrNotFound.
func (s *Service) Pending(ctx context.Context, callerID string) (*domain.PendingChange, error) {
	change, err := s.changes.GetPending(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("approval.Service.Pending: %w", err)
	}
	return change, nil
}

// Diff returns the working tree diff and porcelain status for review.
func (s *Service) Diff(ctx context.Context) (diff, status string, err error) {
	status, err = s.git.Status(ctx)
	if err != nil {
		return "", "", fmt.Errorf("approval.Service.Diff: %w", err)
	}
	diff, err = s.git.Diff(ctx)
	if err != nil {
		return "", "", fmt.Errorf("approval.Service.Diff: %w", err)
	}
	return diff, status, nil
}

// matchPending resolves the transition target. Returns the pending change
// when the id matches the caller's current one; otherwise an idempotent
// Outcome describing the change's existing state, or domain.ErrNotFound for
// an id this caller never owned.
func (s *Service) matchPending(ctx context.Context, callerID, changeID string) (*domain.PendingChange, *Outcome, error) {
	pending, err := s.changes.GetPending(ctx, callerID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, nil, err
	}
	if pending != nil && pending.ID == changeID {
		return pending, nil, nil
	}

	prior, err := s.changes.Get(ctx, callerID, changeID)
	if err != nil {
		return nil, nil, err
	}
	return nil, &Outcome{
		ChangeID:        changeID,
		State:           prior.State,
		AlreadyResolved: true,
	}, nil
}

func (s *Service) resolve(ctx context.Context, change *domain.PendingChange, state domain.ChangeState) error {
	if err := s.changes.Resolve(ctx, change.CallerID, change.ID, state); err != nil {
		return err
	}

	rec := &domain.ApprovalRecord{
		ChangeID:  change.ID,
		CallerID:  change.CallerID,
		Prompt:    change.Prompt,
		State:     state,
		CreatedAt: time.Now(),
	}
	if err := s.history.Append(ctx, rec); err != nil {
		// History is display/audit only; a failed append never blocks the
		// transition.
		log.Warn().Err(err).Str("change_id", change.ID).Msg("approval: failed to append history")
	}
	return nil
}

// NewChangeID builds a change identifier unique per caller and timestamp.
func NewChangeID() string {
	return time.Now().UTC().Format("20060102T150405") + "-" + uuid.NewString()[:8]
}

func commitMessage(prompt string) string {
	subject := strings.TrimSpace(strings.ReplaceAll(prompt, "\n", " "))
	if len(subject) > maxCommitSubject {
		subject = subject[:maxCommitSubject] + "..."
	}
	return "steward: " + subject
}
