// Package messaging defines the broker contract shared by the in-process,
// RabbitMQ and Kafka adapters, and the delivery policy they all apply.
package messaging

import (
	"context"
	"time"

	"bookstore-choreography/internal/domain/event"
	"bookstore-choreography/internal/pkg/config"
	"bookstore-choreography/internal/pkg/errs"
	"bookstore-choreography/internal/pkg/retry"
)

var (
	ErrBrokerClosed        = errs.New("broker closed")
	ErrInvalidSubscription = errs.New("invalid subscription")
	ErrDuplicateQueue      = errs.New("queue already has a consumer")
)

type Handler func(ctx context.Context, env event.Envelope) error

// Subscription binds one durable queue to one or more fanout channels.
type Subscription struct {
	Queue    string
	Channels []string
	Handler  Handler
	// Terminal subscriptions never redeliver and never produce faults
	Terminal bool
}

func (s Subscription) Validate() error {
	if s.Queue == "" || len(s.Channels) == 0 || s.Handler == nil {
		return errs.Wrapf(ErrInvalidSubscription, "queue=%q channels=%v", s.Queue, s.Channels)
	}
	return nil
}

type Broker interface {
	// Publish returns once the broker accepted the message, not when consumers finish.
	Publish(ctx context.Context, channel string, env event.Envelope) error
	Subscribe(sub Subscription) error
	Close() error
}

type PublishFunc func(ctx context.Context, channel string, env event.Envelope) error

type Options struct {
	RetryLimit    int
	RetryInterval time.Duration
	// 0 means unlimited concurrent handlers per queue
	Concurrency int
	Prefetch    int
}

func OptionsFromConfig(cfg config.BrokerConfig) Options {
	return Options{
		RetryLimit:    cfg.RetryLimit,
		RetryInterval: cfg.RetryInterval,
		Concurrency:   cfg.Concurrency,
		Prefetch:      cfg.Prefetch,
	}
}

func (o Options) RedeliveryPolicy(terminal bool) retry.Policy {
	if terminal {
		return retry.Fixed(0, 0)
	}
	return retry.Fixed(o.RetryLimit, o.RetryInterval)
}

// SubscribeAll stops at the first failing subscription.
func SubscribeAll(b Broker, subs ...Subscription) error {
	for _, sub := range subs {
		if err := b.Subscribe(sub); err != nil {
			return errs.Wrapf(err, "subscribe %s", sub.Queue)
		}
	}
	return nil
}
