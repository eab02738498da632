package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mkevin1491/fyp/internal/bootstrap/logging"
	"github.com/mkevin1491/fyp/internal/ports"
)

// PendingCountEvent is the wire name browsers subscribe to.
const PendingCountEvent = "update_pending_approvals_count"

type pendingCountMessage struct {
	Event string `json:"event"`
	Count int64  `json:"count"`
}

func encodePendingCount(count int64) []byte {
	// Marshalling a fixed struct of a string and an int cannot fail.
	raw, _ := json.Marshal(pendingCountMessage{Event: PendingCountEvent, Count: count})
	return raw
}

// Fanout delivers each count to every configured notifier in order.
type Fanout struct {
	notifiers []ports.Notifier
}

var _ ports.Notifier = (*Fanout)(nil)

func NewFanout(notifiers ...ports.Notifier) *Fanout {
	kept := make([]ports.Notifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			kept = append(kept, n)
		}
	}
	return &Fanout{notifiers: kept}
}

func (f *Fanout) PublishPendingCount(ctx context.Context, count int64) {
	for _, n := range f.notifiers {
		n.PublishPendingCount(ctx, count)
	}
}

// LogNotifier records every published count in the structured log.
type LogNotifier struct{}

var _ ports.Notifier = LogNotifier{}

func (LogNotifier) PublishPendingCount(ctx context.Context, count int64) {
	logging.Info(
		logging.WithAttrs(ctx, slog.String("component", "infrastructure.notify")),
		"pending approvals count published",
		slog.Int64("count", count),
	)
}
