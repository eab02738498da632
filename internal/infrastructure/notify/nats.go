package notify

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/mkevin1491/fyp/internal/bootstrap/logging"
	"github.com/mkevin1491/fyp/internal/errs"
	"github.com/mkevin1491/fyp/internal/ports"
)

const DefaultNATSSubject = "switchgear.pending.count"

// NATSPublisher forwards pending counts to other services over NATS core.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

var _ ports.Notifier = (*NATSPublisher)(nil)

func ConnectNATS(ctx context.Context, url string, subject string) (*NATSPublisher, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errs.Wrap(nats.ErrBadURL, "connect nats")
	}
	conn, err := nats.Connect(
		url,
		nats.Name("fyp-ingest"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logging.Warn(ctx, "nats disconnected", slog.Any("err", errs.Loggable(err)))
			}
		}),
	)
	if err != nil {
		return nil, errs.Wrap(err, "connect nats")
	}
	return NewNATSPublisher(conn, subject), nil
}

func NewNATSPublisher(conn *nats.Conn, subject string) *NATSPublisher {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = DefaultNATSSubject
	}
	return &NATSPublisher{conn: conn, subject: subject}
}

func (p *NATSPublisher) PublishPendingCount(ctx context.Context, count int64) {
	if p.conn == nil {
		return
	}
	if err := p.conn.Publish(p.subject, encodePendingCount(count)); err != nil {
		logging.Warn(
			logging.WithAttrs(ctx, slog.String("component", "infrastructure.notify.nats")),
			"publish pending count failed",
			slog.String("subject", p.subject),
			slog.Any("err", errs.Loggable(err)),
		)
	}
}

// Close flushes buffered messages and closes the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	err := p.conn.Drain()
	if err != nil {
		p.conn.Close()
	}
	return err
}
