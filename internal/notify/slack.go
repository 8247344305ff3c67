package notify

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

// slackAPI is the subset of the Slack client used here, extracted so tests
// can script responses.
type slackAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackNotifier posts messages to a channel through the Slack Web API.
type SlackNotifier struct {
	api     slackAPI
	channel string
}

// NewSlackNotifier creates a bot-token backed notifier.
func NewSlackNotifier(botToken, channel string) *SlackNotifier {
	return &SlackNotifier{
		api:     slack.New(botToken),
		channel: channel,
	}
}

// Notify posts the message to the configured channel.
func (n *SlackNotifier) Notify(ctx context.Context, message string) error {
	if n.api == nil {
		return fmt.Errorf("slack client is not configured")
	}
	_, _, err := n.api.PostMessageContext(ctx, n.channel, slack.MsgOptionText(message, false))
	if err != nil {
		return fmt.Errorf("post slack message: %w", err)
	}
	return nil
}
