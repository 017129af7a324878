package components

import (
	"log/slog"

	"bookstore-choreography/internal/handler/api"
	"bookstore-choreography/internal/pkg/clock"
	"bookstore-choreography/internal/pkg/config"
	"bookstore-choreography/internal/usecase/commands"
	"bookstore-choreography/internal/usecase/queries"
	"bookstore-choreography/internal/usecase/shared"

	"go.uber.org/fx"
)

var PaymentModule = fx.Module("payment",
	fx.Provide(
		NewPaymentCommands,
		queries.NewPaymentQueries,
		route(api.NewPaymentHandler),
	),
)

func NewPaymentCommands(
	uow shared.UnitOfWork,
	catalog shared.CatalogClient,
	publisher shared.EventPublisher,
	idempotency shared.IdempotencyStore,
	clk clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) commands.PaymentCommands {
	return commands.NewPaymentUseCase(uow, catalog, publisher, idempotency, clk, cfg.Payment.SettlementDelay, logger)
}
