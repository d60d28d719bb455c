package messenger

import (
	"context"

	"github.com/stewardhq/steward/internal/domain"
)

// MessageID uniquely identifies a message within a messenger platform.
type MessageID string

// CommandAction represents the type of a parsed user command.
type CommandAction string

const (
	// CommandActionTask submits the remaining text as an agent task.
	CommandActionTask CommandAction = "task"
	// CommandActionApprove approves a pending change.
	CommandActionApprove CommandAction = "approve"
	// CommandActionReject rejects a pending change.
	CommandActionReject CommandAction = "reject"
	// CommandActionStatus queries session and pending-change state.
	CommandActionStatus CommandAction = "status"
	// CommandActionDiff shows the working tree diff.
	CommandActionDiff CommandAction = "diff"
	// CommandActionClear drops the caller's agent session.
	CommandActionClear CommandAction = "clear"
	// CommandActionHelp requests usage text.
	CommandActionHelp CommandAction = "help"
	// CommandActionUnknown marks an unrecognized or empty command.
	CommandActionUnknown CommandAction = "unknown"
)

// Command is a platform-independent parsed user command.
type Command struct {
	Action   CommandAction
	Argument string // change id for approve/reject, prompt for task
	Raw      string // original text
}

// Messenger abstracts communication with a chat platform. Implementations
// handle platform-specific API calls; the interface is platform-agnostic.
type Messenger interface {
	// SendMessage posts a text message to a channel and returns its platform
	// message ID.
	SendMessage(ctx context.Context, channelID, text string) (MessageID, error)

	// SendApprovalPrompt posts the review prompt for a pending change with
	// interactive approve/reject controls.
	SendApprovalPrompt(ctx context.Context, channelID string, change *domain.PendingChange) (MessageID, error)

	// UpdateMessage edits an existing message in a channel.
	UpdateMessage(ctx context.Context, channelID string, messageID MessageID, text string) error

	// Platform returns the messenger platform identifier (e.g. "slack").
	Platform() string
}
