package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"bookstore-choreography/internal/infra/db"
	"bookstore-choreography/internal/infra/repository/memory"
	"bookstore-choreography/internal/infra/repository/postgres"
	"bookstore-choreography/internal/pkg/clock"
	"bookstore-choreography/internal/pkg/config"
	"bookstore-choreography/internal/usecase/queries"
	"bookstore-choreography/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

const connectTimeout = 30 * time.Second

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewPersistence,
	),
)

// Persistence exposes one store under the write and read ports.
type Persistence struct {
	fx.Out

	UoW      shared.UnitOfWork
	Orders   queries.OrderReadStore
	Payments queries.PaymentReadStore
	Books    queries.BookReadStore
}

func NewPersistence(lc fx.Lifecycle, cfg config.Config, clk clock.Clock, logger *slog.Logger) (Persistence, error) {
	if cfg.Store.Driver != config.StorePostgres {
		logger.Info("using in-memory store")
		store := memory.NewStore(clk)
		return Persistence{
			UoW:      store,
			Orders:   store.OrderReader(),
			Payments: store.PaymentReader(),
			Books:    store.BookReader(),
		}, nil
	}

	pool, err := NewDB(lc, cfg)
	if err != nil {
		return Persistence{}, err
	}
	store := postgres.NewStore(pool, clk, logger)
	logger.Info("using postgres store", "host", cfg.DB.Host, "database", cfg.DB.DBName)
	return Persistence{
		UoW:      store,
		Orders:   store.OrderReader(),
		Payments: store.PaymentReader(),
		Books:    store.BookReader(),
	}, nil
}

func NewDB(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	pool, cleanup, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := db.ApplySchema(ctx, pool); err != nil {
		cleanup()
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})

	return pool, nil
}
