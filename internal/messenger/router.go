package messenger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/stewardhq/steward/internal/approval"
	"github.com/stewardhq/steward/internal/core"
	"github.com/stewardhq/steward/internal/domain"
)

// maxMessageLen bounds outbound message bodies; chat platforms reject
// oversized payloads.
const maxMessageLen = 3500

const helpText = "Send me a task in plain language and I will run it against the repository.\n" +
	"Commands: `status`, `diff`, `approve [change-id]`, `reject [change-id]`, `clear`, `help`."

// Pipeline is the subset of the task pipeline the router drives.
// *core.Service satisfies this interface.
type Pipeline interface {
	SubmitTask(ctx context.Context, callerID, prompt string) (*core.SubmitResult, error)
	Approve(ctx context.Context, callerID, changeID string) (*approval.Outcome, error)
	Reject(ctx context.Context, callerID, changeID string) (*approval.Outcome, error)
	GetStatus(ctx context.Context, callerID string) (*core.Status, error)
	Diff(ctx context.Context) (diff, status string, err error)
	ClearSession(ctx context.Context, callerID string) error
}

// Router bridges messenger commands to the task pipeline and posts results
// back to the originating channel.
type Router struct {
	pipeline  Pipeline
	messenger Messenger
}

func NewRouter(pipeline Pipeline, msg Messenger) *Router {
	return &Router{
		pipeline:  pipeline,
		messenger: msg,
	}
}

// HandleCommand executes a parsed command for the caller and posts the
// outcome to the channel. Pipeline-level denials (rate limit, pending change)
// are user messages, not errors.
func (r *Router) HandleCommand(ctx context.Context, callerID, channelID string, cmd Command) error {
	switch cmd.Action {
	case CommandActionTask:
		return r.handleTask(ctx, callerID, channelID, cmd.Argument)
	case CommandActionApprove:
		return r.handleResolve(ctx, callerID, channelID, cmd.Argument, true)
	case CommandActionReject:
		return r.handleResolve(ctx, callerID, channelID, cmd.Argument, false)
	case CommandActionStatus:
		return r.handleStatus(ctx, callerID, channelID)
	case CommandActionDiff:
		return r.handleDiff(ctx, channelID)
	case CommandActionClear:
		if err := r.pipeline.ClearSession(ctx, callerID); err != nil {
			return fmt.Errorf("messenger.Router.HandleCommand: %w", err)
		}
		return r.post(ctx, channelID, "Session cleared. The next task starts a fresh conversation.")
	case CommandActionHelp, CommandActionUnknown:
		return r.post(ctx, channelID, helpText)
	default:
		return r.post(ctx, channelID, helpText)
	}
}

// HandleApprovalAction resolves a pending change from an interactive button
// press. action is "approve" or "reject"; promptID is the message carrying
// the buttons, which is edited in place with the outcome so stale buttons do
// not linger. A zero promptID falls back to posting a new message.
func (r *Router) HandleApprovalAction(ctx context.Context, callerID, channelID string, promptID MessageID, action, changeID string) error {
	resolve := r.pipeline.Reject
	if action == "approve" {
		resolve = r.pipeline.Approve
	}

	outcome, err := resolve(ctx, callerID, changeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return r.post(ctx, channelID, fmt.Sprintf("Change `%s` not found.", changeID))
		}
		return fmt.Errorf("messenger.Router.HandleApprovalAction: %w", err)
	}

	text := outcomeText(outcome)
	if promptID != "" {
		if updateErr := r.messenger.UpdateMessage(ctx, channelID, promptID, text); updateErr != nil {
			log.Warn().Err(updateErr).Str("change_id", changeID).Msg("messenger: failed to update approval prompt")
			return r.post(ctx, channelID, text)
		}
		return nil
	}
	return r.post(ctx, channelID, text)
}

func (r *Router) handleTask(ctx context.Context, callerID, channelID, prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return r.post(ctx, channelID, helpText)
	}

	result, err := r.pipeline.SubmitTask(ctx, callerID, prompt)
	if err != nil {
		log.Error().Err(err).Str("caller_id", callerID).Msg("messenger: task submission failed")
		return r.post(ctx, channelID, "Something went wrong while submitting the task. Please try again.")
	}

	switch {
	case result.RateLimited:
		// A suppressed notice stays silent; the denial already happened and
		// repeating it within the cooldown is noise.
		if result.RetryMessage == "" {
			return nil
		}
		return r.post(ctx, channelID, result.RetryMessage)

	case result.BlockedBy != nil:
		return r.post(ctx, channelID, fmt.Sprintf(
			"A pending change is awaiting review: `%s` (%s). Approve or reject it before submitting a new task.",
			result.BlockedBy.ID, truncate(result.BlockedBy.Prompt, 120)))

	case !result.Execution.Success:
		return r.post(ctx, channelID, "Task failed: "+truncate(result.Execution.ErrorDetail, maxMessageLen-20))
	}

	if err := r.post(ctx, channelID, truncate(result.Execution.Output, maxMessageLen)); err != nil {
		return err
	}

	if _, err := r.messenger.SendApprovalPrompt(ctx, channelID, result.Change); err != nil {
		return fmt.Errorf("messenger.Router.handleTask: approval prompt: %w", err)
	}
	return nil
}

func (r *Router) handleResolve(ctx context.Context, callerID, channelID, changeID string, approve bool) error {
	// No explicit id targets the caller's current pending change.
	if changeID == "" {
		status, err := r.pipeline.GetStatus(ctx, callerID)
		if err != nil {
			return fmt.Errorf("messenger.Router.handleResolve: %w", err)
		}
		if status.Pending == nil {
			return r.post(ctx, channelID, "No pending change to resolve.")
		}
		changeID = status.Pending.ID
	}

	resolve := r.pipeline.Reject
	if approve {
		resolve = r.pipeline.Approve
	}

	outcome, err := resolve(ctx, callerID, changeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return r.post(ctx, channelID, fmt.Sprintf("Change `%s` not found.", changeID))
		}
		return fmt.Errorf("messenger.Router.handleResolve: %w", err)
	}

	return r.post(ctx, channelID, outcomeText(outcome))
}

func (r *Router) handleStatus(ctx context.Context, callerID, channelID string) error {
	status, err := r.pipeline.GetStatus(ctx, callerID)
	if err != nil {
		return fmt.Errorf("messenger.Router.handleStatus: %w", err)
	}

	var b strings.Builder
	if status.AgentSessionID == "" {
		b.WriteString("No active session.")
	} else {
		fmt.Fprintf(&b, "Active session with %d turn(s) since the last compaction.", status.TurnCount)
	}
	if status.Pending != nil {
		fmt.Fprintf(&b, "\nPending change `%s`: %s", status.Pending.ID, truncate(status.Pending.Prompt, 120))
	}
	if len(status.History) > 0 {
		b.WriteString("\nRecent decisions:")
		for _, rec := range status.History {
			fmt.Fprintf(&b, "\n- `%s` %s (%s)", rec.ChangeID, rec.State, truncate(rec.Prompt, 60))
		}
	}

	return r.post(ctx, channelID, b.String())
}

func (r *Router) handleDiff(ctx context.Context, channelID string) error {
	diff, status, err := r.pipeline.Diff(ctx)
	if err != nil {
		return fmt.Errorf("messenger.Router.handleDiff: %w", err)
	}

	if strings.TrimSpace(status) == "" {
		return r.post(ctx, channelID, "Working tree is clean.")
	}

	text := "```\n" + truncate(diff, maxMessageLen-10) + "\n```"
	return r.post(ctx, channelID, text)
}

func (r *Router) post(ctx context.Context, channelID, text string) error {
	if _, err := r.messenger.SendMessage(ctx, channelID, text); err != nil {
		return fmt.Errorf("messenger.Router: send message: %w", err)
	}
	return nil
}

func outcomeText(outcome *approval.Outcome) string {
	switch {
	case outcome.AlreadyResolved:
		return fmt.Sprintf("Change `%s` was already %s.", outcome.ChangeID, outcome.State)
	case outcome.State == domain.ChangeStateApproved && outcome.NoChanges:
		return fmt.Sprintf("Change `%s` approved. No file changes to commit.", outcome.ChangeID)
	case outcome.State == domain.ChangeStateApproved:
		return fmt.Sprintf("Change `%s` approved and committed.", outcome.ChangeID)
	case outcome.NoChanges:
		return fmt.Sprintf("Change `%s` rejected. Working tree was already clean.", outcome.ChangeID)
	default:
		return fmt.Sprintf("Change `%s` rejected and rolled back.", outcome.ChangeID)
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
