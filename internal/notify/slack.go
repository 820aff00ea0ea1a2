package notify

import (
	"context"
	"fmt"

	slacklib "github.com/slack-go/slack"
)

// SlackAPI abstracts the subset of the Slack client used by SlackFeed.
// This allows testing without real HTTP calls.
type SlackAPI interface {
	PostMessage(channelID string, options ...slacklib.MsgOption) (string, string, error)
}

// SlackFeed posts every moderation event to an operations channel so admins
// see activity without tailing the audit table.
type SlackFeed struct {
	api     SlackAPI
	channel string
}

var _ Sender = (*SlackFeed)(nil)

func NewSlackFeed(api SlackAPI, channel string) *SlackFeed {
	return &SlackFeed{api: api, channel: channel}
}

func (f *SlackFeed) Send(_ context.Context, e Event) error {
	text := fmt.Sprintf(":shield: *%s* account `%s` (%s)", e.Type, e.AccountID, e.Email)
	if e.Reason != "" {
		text += "\n> " + e.Reason
	}

	if _, _, err := f.api.PostMessage(f.channel, slacklib.MsgOptionText(text, false)); err != nil {
		return fmt.Errorf("notify.SlackFeed.Send: %w", err)
	}

	return nil
}
