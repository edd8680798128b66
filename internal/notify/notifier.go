// Package notify defines the notification interface and implementations
// for alert delivery.
package notify

import (
	"context"
	"errors"
	"strings"
)

// ErrNotConfigured is returned by notifiers that have no usable destination.
var ErrNotConfigured = errors.New("notifier not configured")

// PlaceholderTokenPrefix marks a token that was never filled in.
const PlaceholderTokenPrefix = "PUT_YOUR"

// Notifier delivers one pre-formatted text message. A nil error means the
// message was delivered; anything else leaves the item eligible for retry.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Configured reports whether token and chatID describe a usable Telegram
// destination.
func Configured(token, chatID string) bool {
	return token != "" &&
		!strings.HasPrefix(token, PlaceholderTokenPrefix) &&
		chatID != ""
}
