package event

// Channels fan out to every bound queue; each queue is one consumer group.
const (
	ChannelPaymentEvents   = "payment-events"
	ChannelBookPriceEvents = "book-price-events"

	QueueOrderState   = "order-state-queue"
	QueueOrderPrice   = "order-price-queue"
	QueueNotification = "notification-queue"
	QueueErrorSink    = "error-sink-queue"
	// Notification service's own sink for notification-queue faults
	QueueNotificationFaults = "notification-fault-queue"
)

// ErrorChannel receives Fault wrappers for messages exhausted on queue.
func ErrorChannel(queue string) string {
	return queue + "-error"
}
