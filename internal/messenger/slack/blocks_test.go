package slack_test

import (
	"strings"
	"testing"

	slacklib "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stewardhq/steward/internal/domain"
	stewardslack "github.com/stewardhq/steward/internal/messenger/slack"
)

func TestBuildApprovalBlocks(t *testing.T) {
	t.Parallel()

	t.Run("returns text section and approve/reject buttons", func(t *testing.T) {
		t.Parallel()

		change := &domain.PendingChange{ID: "chg-1", Prompt: "rename the config package"}
		blocks := stewardslack.BuildApprovalBlocks(change)

		require.Len(t, blocks, 2)

		section, ok := blocks[0].(*slacklib.SectionBlock)
		require.True(t, ok, "first block should be a SectionBlock")
		require.NotNil(t, section.Text)
		assert.Contains(t, section.Text.Text, "chg-1")
		assert.Contains(t, section.Text.Text, "rename the config package")

		actionBlock, ok := blocks[1].(*slacklib.ActionBlock)
		require.True(t, ok, "second block should be an ActionBlock")
		require.NotNil(t, actionBlock.Elements)
		require.Len(t, actionBlock.Elements.ElementSet, 2, "should have approve and reject buttons")

		approve, ok := actionBlock.Elements.ElementSet[0].(*slacklib.ButtonBlockElement)
		require.True(t, ok, "element should be a ButtonBlockElement")
		assert.Equal(t, stewardslack.ActionApproveChange, approve.ActionID)
		assert.Equal(t, "chg-1", approve.Value)

		reject, ok := actionBlock.Elements.ElementSet[1].(*slacklib.ButtonBlockElement)
		require.True(t, ok, "element should be a ButtonBlockElement")
		assert.Equal(t, stewardslack.ActionRejectChange, reject.ActionID)
		assert.Equal(t, "chg-1", reject.Value)
	})

	t.Run("long prompt is truncated in the preview", func(t *testing.T) {
		t.Parallel()

		change := &domain.PendingChange{ID: "chg-2", Prompt: strings.Repeat("a", 500)}
		blocks := stewardslack.BuildApprovalBlocks(change)

		section, ok := blocks[0].(*slacklib.SectionBlock)
		require.True(t, ok)
		assert.Less(t, len(section.Text.Text), 300)
		assert.Contains(t, section.Text.Text, "...")
	})
}
