package consumers

import (
	"context"
	"log/slog"

	"bookstore-choreography/internal/domain/event"
)

type NotificationConsumer struct {
	logger *slog.Logger
}

func NewNotificationConsumer(logger *slog.Logger) *NotificationConsumer {
	return &NotificationConsumer{logger: logger.With("component", "notification")}
}

// HandlePaymentCompleted stands in for a customer e-mail.
func (c *NotificationConsumer) HandlePaymentCompleted(_ context.Context, msg event.PaymentCompleted) error {
	c.logger.Info("Sending email: payment for order completed",
		"order_id", msg.OrderID,
		"amount", msg.Amount.String())
	return nil
}

// HandleFault logs a notification that could not be sent after every redelivery.
func (c *NotificationConsumer) HandleFault(_ context.Context, f event.Fault) error {
	c.logger.Error("notification not sent",
		"queue", f.Queue,
		"message_id", f.Message.ID.String(),
		"kind", string(f.Message.Kind),
		"attempts", f.Attempts,
		"exceptions", f.Exceptions)
	return nil
}
