package components

import (
	"log/slog"

	"bookstore-choreography/internal/domain/order"
	"bookstore-choreography/internal/handler/api"
	"bookstore-choreography/internal/pkg/config"
	"bookstore-choreography/internal/usecase/commands"
	"bookstore-choreography/internal/usecase/consumers"
	"bookstore-choreography/internal/usecase/outbox"
	"bookstore-choreography/internal/usecase/queries"
	"bookstore-choreography/internal/usecase/shared"

	"go.uber.org/fx"
)

var OrderModule = fx.Module("order",
	fx.Provide(
		fx.Annotate(
			NewDispatcher,
			fx.As(fx.Self()),
			fx.As(new(shared.OutboxNotifier)),
		),
		commands.NewOrderUseCase,
		queries.NewOrderQueries,
		fx.Annotate(
			NewErrorSink,
			fx.As(fx.Self()),
			fx.As(new(queries.FaultLog)),
		),
		queries.NewFaultQueries,
		consumers.NewOrderStateReconciler,
		NewPricePropagationConsumer,
		subscription((*consumers.OrderStateReconciler).Subscription),
		subscription((*consumers.PricePropagationConsumer).Subscription),
		subscription((*consumers.ErrorSink).Subscription),
		route(api.NewOrderHandler),
		route(api.NewFaultHandler),
	),
	fx.Invoke(startDispatcher),
)

func NewDispatcher(uow shared.UnitOfWork, gateway shared.PaymentGateway, cfg config.Config, logger *slog.Logger) *outbox.Dispatcher {
	return outbox.NewDispatcher(uow, gateway, cfg.Outbox, cfg.Payment, logger)
}

func NewErrorSink(cfg config.Config, logger *slog.Logger) *consumers.ErrorSink {
	return consumers.NewErrorSink(cfg.Order.FaultLogCap, logger)
}

func NewPricePropagationConsumer(uow shared.UnitOfWork, cfg config.Config, logger *slog.Logger) (*consumers.PricePropagationConsumer, error) {
	policy, err := order.ParsePricePolicy(cfg.Order.PricePolicy)
	if err != nil {
		return nil, err
	}
	return consumers.NewPricePropagationConsumer(uow, policy, cfg.Order.FailBookIDs, logger), nil
}

func startDispatcher(lc fx.Lifecycle, d *outbox.Dispatcher) {
	lc.Append(fx.Hook{
		OnStart: d.Start,
		OnStop:  d.Stop,
	})
}
