package components

import (
	"bookstore-choreography/internal/usecase/consumers"

	"go.uber.org/fx"
)

var NotificationModule = fx.Module("notification",
	fx.Provide(
		consumers.NewNotificationConsumer,
		subscription((*consumers.NotificationConsumer).Subscription),
		subscription((*consumers.NotificationConsumer).FaultSubscription),
	),
)
