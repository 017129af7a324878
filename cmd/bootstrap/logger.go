package bootstrap

import (
	"context"
	"log/slog"

	"bookstore-choreography/internal/handler/middleware"
	"bookstore-choreography/internal/pkg/config"

	"go.uber.org/fx"
)

var LoggerModule = fx.Module("logger",
	fx.Provide(
		NewLogger,
		NewSlogLogger,
	),
)

func NewLogger(lc fx.Lifecycle, cfg config.Config) *middleware.Logger {
	logger := middleware.NewLogger(cfg.Log)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return logger.Close()
		},
	})
	return logger
}

func NewSlogLogger(l *middleware.Logger, cfg config.Config) *slog.Logger {
	return l.Slog().With("service", cfg.Server.Name)
}
