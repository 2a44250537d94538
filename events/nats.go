package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"chat_artifact_publisher/config"
)

// Publisher is the subset of *nats.Conn the notifier needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSNotifier publishes each event as JSON on "<prefix>.<type>".
type NATSNotifier struct {
	conn   Publisher
	prefix string
}

func NewNATSNotifier(conn Publisher, prefix string) *NATSNotifier {
	return &NATSNotifier{conn: conn, prefix: prefix}
}

func (n *NATSNotifier) Subject(t Type) string {
	if n.prefix == "" {
		return string(t)
	}
	return n.prefix + "." + string(t)
}

func (n *NATSNotifier) Notify(ctx context.Context, event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		slog.WarnContext(ctx, "encode event failed", "type", event.Type, "error", err)
		return
	}
	subject := n.Subject(event.Type)
	if err := n.conn.Publish(subject, data); err != nil {
		slog.WarnContext(ctx, "publish event failed", "subject", subject, "error", err)
		return
	}
	slog.DebugContext(ctx, "event published", "subject", subject, "id", event.ID)
}

// Connect opens a reconnecting NATS connection.
func Connect(cfg config.NATSConfig) (*nats.Conn, error) {
	return nats.Connect(cfg.URL,
		nats.Name("chat-artifact-publisher"),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("nats disconnected", "error", err)
			} else {
				slog.Warn("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			if sub != nil {
				slog.Error("nats subscription error", "subject", sub.Subject, "error", err)
				return
			}
			slog.Error("nats async error", "error", err)
		}),
	)
}
