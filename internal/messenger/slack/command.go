package slack

import (
	"regexp"
	"strings"

	"github.com/stewardhq/steward/internal/messenger"
)

// mentionPattern matches both Slack-encoded mentions (<@U12345>) and a literal @steward at the start.
var mentionPattern = regexp.MustCompile(`^(?:<@[A-Z0-9]+>|@steward)\s*`) //nolint:gochecknoglobals // compiled regexp

// resolvePattern matches "approve" or "reject" optionally followed by a change id.
var resolvePattern = regexp.MustCompile(`(?i)^(approve|reject)(?:\s+(\S+))?$`) //nolint:gochecknoglobals // compiled regexp

// ParseCommand extracts a command from a Slack message text.
// It handles both "@steward ..." and "<@U12345> ..." formats (Slack encodes mentions).
// Text that matches no keyword is treated as a task prompt.
func ParseCommand(text string) messenger.Command {
	cmd := messenger.Command{
		Action: messenger.CommandActionUnknown,
		Raw:    text,
	}

	stripped := strings.TrimSpace(mentionPattern.ReplaceAllString(text, ""))
	if stripped == "" {
		return cmd
	}

	switch strings.ToLower(stripped) {
	case "status":
		cmd.Action = messenger.CommandActionStatus
		return cmd
	case "diff":
		cmd.Action = messenger.CommandActionDiff
		return cmd
	case "clear":
		cmd.Action = messenger.CommandActionClear
		return cmd
	case "help":
		cmd.Action = messenger.CommandActionHelp
		return cmd
	}

	if m := resolvePattern.FindStringSubmatch(stripped); m != nil {
		cmd.Action = messenger.CommandActionApprove
		if strings.EqualFold(m[1], "reject") {
			cmd.Action = messenger.CommandActionReject
		}
		cmd.Argument = m[2]
		return cmd
	}

	cmd.Action = messenger.CommandActionTask
	cmd.Argument = stripped

	return cmd
}
