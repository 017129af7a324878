package bootstrap

import (
	"context"
	"log/slog"
	"os"

	"bookstore-choreography/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// Module is the infrastructure every service shares; the service's own
// components are passed to Run.
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	MetricsModule,
	PersistenceModule,
	MessagingModule,
	ClientsModule,
	ServerModule,
)

func init() {
	// fail safe: never expose debug output on a misconfigured host
	gin.SetMode(gin.ReleaseMode)

	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}
}

// RunService runs one service in its own process.
func RunService(component fx.Option) {
	Run(component, fx.Invoke(requireSharedBroker))
}

func requireSharedBroker(cfg config.Config) error {
	return cfg.ValidateStandalone()
}

func Run(components ...fx.Option) {
	app := fx.New(
		Module,
		fx.Options(components...),
	)

	if err := app.Start(context.Background()); err != nil {
		slog.Error("failed to start application", "error", err)
		os.Exit(1)
	}

	<-app.Done()

	if err := app.Stop(context.Background()); err != nil {
		slog.Error("failed to stop application", "error", err)
	}

	slog.Info("application stopped")
}
