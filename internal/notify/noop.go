package notify

import (
	"context"
	"log/slog"
)

// NoOpNotifier implements Notifier for deployments without a Telegram token
// or chat. Every call logs a configuration warning and fails with
// ErrNotConfigured so nothing is recorded as notified.
type NoOpNotifier struct {
	log *slog.Logger
}

// NewNoOpNotifier creates a notifier that refuses every message.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &NoOpNotifier{log: log}
}

// Notify logs and rejects the message.
func (n *NoOpNotifier) Notify(_ context.Context, text string) error {
	n.log.Warn("telegram not configured, set TELEGRAM_TOKEN and TELEGRAM_CHAT_ID",
		"message_bytes", len(text),
	)
	return ErrNotConfigured
}
