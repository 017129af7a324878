package components

import (
	"context"
	"log/slog"

	"bookstore-choreography/internal/handler/api"
	"bookstore-choreography/internal/usecase/commands"
	"bookstore-choreography/internal/usecase/queries"

	"go.uber.org/fx"
)

var CatalogModule = fx.Module("catalog",
	fx.Provide(
		commands.NewBookUseCase,
		queries.NewBookQueries,
		route(api.NewBookHandler),
	),
	fx.Invoke(seedCatalog),
)

func seedCatalog(lc fx.Lifecycle, cmds commands.BookCommands, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := cmds.SeedDefaults(ctx); err != nil {
				return err
			}
			logger.Info("catalog ready")
			return nil
		},
	})
}
