package notify

import "context"

// Notifier delivers a benchmark event to an external channel.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Event types gating delivery through configuration.
const (
	EventRunComplete = "on_run_complete"
	EventRegression  = "on_regression"
)
