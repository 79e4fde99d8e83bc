package notify

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notification represents a customer-facing notification about an order
// or invoice lifecycle change
type Notification struct {
	RecipientID uuid.UUID         `json:"recipient_id"`
	EventType   string            `json:"event_type"`
	Subject     string            `json:"subject"`
	Reference   string            `json:"reference"` // Order or invoice number
	Fields      map[string]string `json:"fields,omitempty"`
	Channels    []string          `json:"channels"` // "in_app", "email", "sms"
}

// Notifier is the interface for delivering notifications.
// Implementations can support different channels (in-app, email, SMS, etc.)
type Notifier interface {
	// Send delivers a notification
	Send(ctx context.Context, n Notification) error
}

// LoggingNotifier is a simple notifier that logs notifications.
// This is useful for development and testing
type LoggingNotifier struct {
	logger *zap.Logger
}

// NewLoggingNotifier creates a new logging notifier
func NewLoggingNotifier(logger *zap.Logger) *LoggingNotifier {
	return &LoggingNotifier{
		logger: logger,
	}
}

// Send logs the notification
func (n *LoggingNotifier) Send(ctx context.Context, notification Notification) error {
	n.logger.Info("NOTIFICATION",
		zap.String("recipient_id", notification.RecipientID.String()),
		zap.String("event_type", notification.EventType),
		zap.String("subject", notification.Subject),
		zap.String("reference", notification.Reference),
		zap.Strings("channels", notification.Channels),
	)
	return nil
}

// Ensure LoggingNotifier implements Notifier
var _ Notifier = (*LoggingNotifier)(nil)
