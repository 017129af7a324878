package bootstrap

import (
	"context"
	"log/slog"

	"bookstore-choreography/internal/infra/messaging"
	"bookstore-choreography/internal/infra/messaging/kafka"
	"bookstore-choreography/internal/infra/messaging/memory"
	"bookstore-choreography/internal/infra/messaging/rabbitmq"
	"bookstore-choreography/internal/pkg/clock"
	"bookstore-choreography/internal/pkg/config"
	"bookstore-choreography/internal/usecase/shared"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

var MessagingModule = fx.Module("messaging",
	fx.Provide(
		NewDeliverer,
		NewBroker,
		fx.Annotate(
			messaging.NewPublisher,
			fx.As(new(shared.EventPublisher)),
		),
	),
	fx.Invoke(Subscribe),
)

func NewDeliverer(cfg config.Config, clk clock.Clock, logger *slog.Logger, reg prometheus.Registerer) *messaging.Deliverer {
	return messaging.NewDeliverer(messaging.OptionsFromConfig(cfg.Broker), clk, logger, messaging.NewMetrics(reg))
}

func NewBroker(lc fx.Lifecycle, cfg config.Config, d *messaging.Deliverer, logger *slog.Logger) (messaging.Broker, error) {
	var b messaging.Broker
	switch cfg.Broker.Driver {
	case config.BrokerRabbitMQ:
		rb, err := rabbitmq.Dial(cfg.Broker.AMQPURL, d, logger)
		if err != nil {
			return nil, err
		}
		b = rb
	case config.BrokerKafka:
		b = kafka.NewBroker(cfg.Broker.KafkaBrokers, d, logger)
	default:
		b = memory.NewBroker(d, logger)
	}
	logger.Info("message broker ready", "driver", cfg.Broker.Driver)

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return b.Close()
		},
	})
	return b, nil
}

type SubscribeParams struct {
	fx.In

	Lifecycle     fx.Lifecycle
	Broker        messaging.Broker
	Logger        *slog.Logger
	Subscriptions []messaging.Subscription `group:"subscriptions"`
}

// Subscribe binds every consumer once the app starts.
func Subscribe(p SubscribeParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			if err := messaging.SubscribeAll(p.Broker, p.Subscriptions...); err != nil {
				return err
			}
			for _, s := range p.Subscriptions {
				p.Logger.Info("subscribed", "queue", s.Queue, "channels", s.Channels)
			}
			return nil
		},
	})
}
