package slack

import (
	"fmt"

	slacklib "github.com/slack-go/slack"

	"github.com/stewardhq/steward/internal/domain"
)

// Action IDs carried on the approval buttons. The interactions handler keys
// off these to resolve the referenced change.
const (
	ActionApproveChange = "approve_change"
	ActionRejectChange  = "reject_change"
)

const maxPromptPreview = 200

// BuildApprovalBlocks builds Slack Block Kit blocks prompting review of a
// pending change. Each button carries the change ID as its value.
func BuildApprovalBlocks(change *domain.PendingChange) []slacklib.Block {
	prompt := change.Prompt
	if len(prompt) > maxPromptPreview {
		prompt = prompt[:maxPromptPreview] + "..."
	}

	text := fmt.Sprintf("*Pending change* `%s`\n> %s", change.ID, prompt)
	section := slacklib.NewSectionBlock(
		slacklib.NewTextBlockObject(slacklib.MarkdownType, text, false, false),
		nil,
		nil,
	)

	approveBtn := slacklib.NewButtonBlockElement(
		ActionApproveChange,
		change.ID,
		slacklib.NewTextBlockObject(slacklib.PlainTextType, "Approve", false, false),
	)
	approveBtn.Style = slacklib.StylePrimary

	rejectBtn := slacklib.NewButtonBlockElement(
		ActionRejectChange,
		change.ID,
		slacklib.NewTextBlockObject(slacklib.PlainTextType, "Reject", false, false),
	)
	rejectBtn.Style = slacklib.StyleDanger

	actions := slacklib.NewActionBlock("change_review", approveBtn, rejectBtn)

	return []slacklib.Block{section, actions}
}
