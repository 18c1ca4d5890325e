package notify

import "log/slog"

// LogNotifier writes notifications to the structured log. Used when no
// NATS server is configured.
type LogNotifier struct{}

// Notify logs the notification for the given account.
func (LogNotifier) Notify(accountID, message string) {
	slog.Info("transfer notification",
		slog.String("account_id", accountID),
		slog.String("message", message))
}
