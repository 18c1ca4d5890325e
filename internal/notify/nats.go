package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nathanyu/account-transfer/internal/telemetry"
)

// NotificationSubject is the subject transfer notifications are published
// on. A downstream notification service fans these out to account holders.
const NotificationSubject = "accounts.notifications"

// Notification is the wire payload published per account per transfer.
type Notification struct {
	AccountID string    `json:"account_id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NATSNotifier publishes transfer notifications to NATS. Publishing is
// best-effort: errors are counted and logged, never returned to the
// engine.
type NATSNotifier struct {
	conn *nats.Conn
}

// NewNATSNotifier connects to the NATS server at url.
func NewNATSNotifier(url string) (*NATSNotifier, error) {
	opts := []nats.Option{
		nats.Name("account-transfer"),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(10),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				slog.Warn("NATS disconnected", slog.Any("error", err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("NATS reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSNotifier{conn: conn}, nil
}

// Notify publishes one notification for the given account.
func (n *NATSNotifier) Notify(accountID, message string) {
	payload := Notification{
		AccountID: accountID,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		telemetry.NotificationsFailed.Inc()
		slog.Warn("failed to marshal notification",
			slog.String("account_id", accountID), slog.Any("error", err))
		return
	}

	if err := n.conn.Publish(NotificationSubject, data); err != nil {
		telemetry.NotificationsFailed.Inc()
		slog.Warn("failed to publish notification",
			slog.String("account_id", accountID), slog.Any("error", err))
		return
	}

	telemetry.NotificationsPublished.WithLabelValues(NotificationSubject).Inc()
}

// Close drains and closes the NATS connection.
func (n *NATSNotifier) Close() {
	if n.conn != nil {
		n.conn.Drain()
		n.conn.Close()
	}
}
