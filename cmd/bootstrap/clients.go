package bootstrap

import (
	"context"
	"log/slog"

	"bookstore-choreography/internal/infra/catalog"
	"bookstore-choreography/internal/infra/idempotency"
	"bookstore-choreography/internal/infra/paymentclient"
	"bookstore-choreography/internal/pkg/clock"
	"bookstore-choreography/internal/pkg/config"
	"bookstore-choreography/internal/usecase/shared"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var ClientsModule = fx.Module("clients",
	fx.Provide(
		fx.Annotate(
			NewCatalogClient,
			fx.As(new(shared.CatalogClient)),
		),
		fx.Annotate(
			NewPaymentGateway,
			fx.As(new(shared.PaymentGateway)),
		),
		NewIdempotencyStore,
	),
)

func NewCatalogClient(cfg config.Config, logger *slog.Logger) *catalog.Client {
	return catalog.NewClient(cfg.Catalog, logger)
}

func NewPaymentGateway(cfg config.Config) *paymentclient.Client {
	return paymentclient.NewClient(cfg.Payment)
}

// NewIdempotencyStore uses redis when REDIS_ADDR is set, memory otherwise.
func NewIdempotencyStore(lc fx.Lifecycle, cfg config.Config, clk clock.Clock, logger *slog.Logger) shared.IdempotencyStore {
	if cfg.Redis.Addr == "" {
		logger.Info("using in-memory idempotency store")
		return idempotency.NewMemoryStore(cfg.Redis.IdempotencyTTL, clk)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		},
		OnStop: func(_ context.Context) error {
			return rdb.Close()
		},
	})
	logger.Info("using redis idempotency store", "addr", cfg.Redis.Addr)
	return idempotency.NewRedisStore(rdb, cfg.Redis.IdempotencyTTL)
}
