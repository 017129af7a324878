// Package consumers holds the event handlers each service subscribes to the broker.
package consumers

import (
	"bookstore-choreography/internal/domain/event"
	"bookstore-choreography/internal/infra/messaging"
)

func (r *OrderStateReconciler) Subscription() messaging.Subscription {
	return messaging.Subscription{
		Queue:    event.QueueOrderState,
		Channels: []string{event.ChannelPaymentEvents},
		Handler:  messaging.On(messaging.NewMux(), r.HandlePaymentCompleted).Handle,
	}
}

func (c *PricePropagationConsumer) Subscription() messaging.Subscription {
	return messaging.Subscription{
		Queue:    event.QueueOrderPrice,
		Channels: []string{event.ChannelBookPriceEvents},
		Handler:  messaging.On(messaging.NewMux(), c.HandleBookPriceUpdated).Handle,
	}
}

func (c *NotificationConsumer) Subscription() messaging.Subscription {
	return messaging.Subscription{
		Queue:    event.QueueNotification,
		Channels: []string{event.ChannelPaymentEvents},
		Handler:  messaging.On(messaging.NewMux(), c.HandlePaymentCompleted).Handle,
	}
}

// FaultSubscription drains notification-queue faults inside the notification service.
func (c *NotificationConsumer) FaultSubscription() messaging.Subscription {
	return messaging.Subscription{
		Queue:    event.QueueNotificationFaults,
		Channels: []string{event.ErrorChannel(event.QueueNotification)},
		Handler:  messaging.On(messaging.NewMux(), c.HandleFault).Handle,
		Terminal: true,
	}
}

// Subscription listens on the error channels of the order service's queues.
func (s *ErrorSink) Subscription() messaging.Subscription {
	return messaging.Subscription{
		Queue: event.QueueErrorSink,
		Channels: []string{
			event.ErrorChannel(event.QueueOrderState),
			event.ErrorChannel(event.QueueOrderPrice),
		},
		Handler:  messaging.On(messaging.NewMux(), s.HandleFault).Handle,
		Terminal: true,
	}
}
