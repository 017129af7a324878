package bootstrap

import (
	"bookstore-choreography/internal/pkg/clock"
	"bookstore-choreography/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
		clock.NewRealClock,
	),
)
