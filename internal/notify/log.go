package notify

import (
	"context"

	"oxigo-server/internal/logging"
)

// LogDispatcher only records that a notification would have been sent.
// Used when no delivery backend is configured.
type LogDispatcher struct {
	log logging.Logger
}

func NewLogDispatcher(log logging.Logger) *LogDispatcher {
	return &LogDispatcher{log: log}
}

func (d *LogDispatcher) Send(ctx context.Context, msg Message) bool {
	d.log.Info(ctx, "notification (log backend)", "kind", msg.Kind, "to", msg.To, "subject", msg.Subject)
	return true
}
