package notify

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/viper"
)

// Manager routes benchmark events to the configured notifier, applying the
// per-event enable switches. A manager with no notifier drops everything:
// notifications are off by default and failures to deliver never fail the
// benchmark itself.
type Manager struct {
	notifier Notifier
}

// NewManager builds a manager from the notifications section of the
// configuration. A bot token takes precedence over a webhook URL.
func NewManager() *Manager {
	m := &Manager{}
	if !viper.GetBool("notifications.slack.enabled") {
		return m
	}

	if botToken := os.Getenv("SLACK_BOT_USER_TOKEN"); botToken != "" {
		m.notifier = NewSlackNotifier(botToken, viper.GetString("notifications.slack.channel"))
		return m
	}
	if webhookURL := viper.GetString("notifications.slack.webhook_url"); webhookURL != "" {
		m.notifier = NewWebhookNotifier(webhookURL)
		return m
	}

	slog.Warn("slack notifications enabled but neither SLACK_BOT_USER_TOKEN nor notifications.slack.webhook_url is set")
	return m
}

// NewManagerWith wraps an explicit notifier, for tests and custom wiring.
func NewManagerWith(n Notifier) *Manager {
	return &Manager{notifier: n}
}

// Notify delivers a message for the given event if the event is enabled.
// Delivery failures are logged, never returned: the record is the product
// of a run, the notification is best effort.
func (m *Manager) Notify(ctx context.Context, eventType, message string) {
	if m.notifier == nil {
		return
	}
	if !viper.GetBool("notifications.slack.events." + eventType) {
		slog.Debug("notification suppressed by config", "event", eventType)
		return
	}
	if err := m.notifier.Notify(ctx, message); err != nil {
		slog.Warn("notification delivery failed", "event", eventType, "error", err)
	}
}
