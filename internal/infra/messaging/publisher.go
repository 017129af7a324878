package messaging

import (
	"context"
	"log/slog"

	"bookstore-choreography/internal/domain/event"
	"bookstore-choreography/internal/pkg/clock"
	"bookstore-choreography/internal/pkg/errs"
)

// Publisher turns domain events into envelopes on a Broker.
type Publisher struct {
	broker Broker
	clock  clock.Clock
	logger *slog.Logger
}

func NewPublisher(b Broker, clk clock.Clock, logger *slog.Logger) *Publisher {
	return &Publisher{broker: b, clock: clk, logger: logger.With("component", "publisher")}
}

func (p *Publisher) Publish(ctx context.Context, channel string, msg event.Message) error {
	env, err := event.Wrap(msg, p.clock.Now())
	if err != nil {
		return err
	}
	if err := p.broker.Publish(ctx, channel, env); err != nil {
		return errs.Mark(errs.Wrapf(err, "publish %s to %s", env.Kind, channel), errs.ErrServiceUnavailable)
	}
	p.logger.Debug("event published", "channel", channel, "kind", string(env.Kind), "message_id", env.ID.String())
	return nil
}
