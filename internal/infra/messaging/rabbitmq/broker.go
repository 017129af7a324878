// Package rabbitmq maps channels to durable fanout exchanges and queues to
// durable queues bound to them.
package rabbitmq

import (
	"context"
	"log/slog"
	"sync"

	"bookstore-choreography/internal/domain/event"
	"bookstore-choreography/internal/infra/messaging"
	"bookstore-choreography/internal/pkg/errs"

	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/errgroup"
)

var ErrPublishNacked = errs.New("broker did not confirm publish")

type Broker struct {
	conn *amqp.Connection

	pubMu     sync.Mutex
	pubCh     *amqp.Channel
	exchanges map[string]struct{}

	mu       sync.Mutex
	channels []*amqp.Channel
	closed   bool

	deliverer *messaging.Deliverer
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func Dial(url string, d *messaging.Deliverer, logger *slog.Logger) (*Broker, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errs.Wrap(err, "amqp dial")
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errs.Wrap(err, "open publish channel")
	}
	if err := ch.Confirm(false); err != nil {
		_ = conn.Close()
		return nil, errs.Wrap(err, "enable publisher confirms")
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Broker{
		conn:      conn,
		pubCh:     ch,
		exchanges: map[string]struct{}{},
		deliverer: d,
		logger:    logger.With("component", "rabbitmq-broker"),
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

func declareExchange(ch *amqp.Channel, name string) error {
	return ch.ExchangeDeclare(
		name,
		amqp.ExchangeFanout,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
}

func (b *Broker) Publish(ctx context.Context, channel string, env event.Envelope) error {
	body, err := env.Encode()
	if err != nil {
		return errs.Wrap(err, "encode envelope")
	}

	b.pubMu.Lock()
	if _, ok := b.exchanges[channel]; !ok {
		if err := declareExchange(b.pubCh, channel); err != nil {
			b.pubMu.Unlock()
			return errs.Wrapf(err, "declare exchange %s", channel)
		}
		b.exchanges[channel] = struct{}{}
	}
	conf, err := b.pubCh.PublishWithDeferredConfirmWithContext(ctx, channel, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.ID.String(),
		Type:         string(env.Kind),
		Timestamp:    env.PublishedAt,
		Body:         body,
	})
	b.pubMu.Unlock()
	if err != nil {
		return errs.Wrapf(err, "publish to %s", channel)
	}

	ok, err := conf.WaitContext(ctx)
	if err != nil {
		return errs.Wrap(err, "await confirm")
	}
	if !ok {
		return errs.Wrapf(ErrPublishNacked, "%s", channel)
	}
	b.deliverer.Metrics().Published(channel)
	return nil
}

// Subscribe declares the queue and its bindings, then starts one consumer on a dedicated channel.
func (b *Broker) Subscribe(sub messaging.Subscription) error {
	if err := sub.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return messaging.ErrBrokerClosed
	}

	ch, err := b.conn.Channel()
	if err != nil {
		return errs.Wrap(err, "open consumer channel")
	}
	if err := b.declare(ch, sub); err != nil {
		_ = ch.Close()
		return err
	}

	opts := b.deliverer.Options()
	if opts.Prefetch > 0 {
		if err := ch.Qos(opts.Prefetch, 0, false); err != nil {
			_ = ch.Close()
			return errs.Wrap(err, "set qos")
		}
	}

	deliveries, err := ch.Consume(
		sub.Queue,
		"c_"+sub.Queue,
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return errs.Wrapf(err, "consume %s", sub.Queue)
	}

	b.channels = append(b.channels, ch)
	b.wg.Add(1)
	go b.consume(sub, deliveries)
	return nil
}

func (b *Broker) declare(ch *amqp.Channel, sub messaging.Subscription) error {
	if _, err := ch.QueueDeclare(sub.Queue, true, false, false, false, nil); err != nil {
		return errs.Wrapf(err, "declare queue %s", sub.Queue)
	}
	for _, channel := range sub.Channels {
		if err := declareExchange(ch, channel); err != nil {
			return errs.Wrapf(err, "declare exchange %s", channel)
		}
		if err := ch.QueueBind(sub.Queue, "", channel, false, nil); err != nil {
			return errs.Wrapf(err, "bind %s to %s", sub.Queue, channel)
		}
	}
	return nil
}

func (b *Broker) consume(sub messaging.Subscription, deliveries <-chan amqp.Delivery) {
	defer b.wg.Done()

	var g errgroup.Group
	if n := b.deliverer.Options().Concurrency; n > 0 {
		g.SetLimit(n)
	}
	defer func() { _ = g.Wait() }()

	for {
		select {
		case <-b.ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				b.logger.Info("consumer stopped", "queue", sub.Queue)
				return
			}
			g.Go(func() error {
				b.handle(sub, d)
				return nil
			})
		}
	}
}

func (b *Broker) handle(sub messaging.Subscription, d amqp.Delivery) {
	env, err := event.DecodeEnvelope(d.Body)
	if err != nil {
		b.logger.Error("dropping undecodable message", "queue", sub.Queue, "message_id", d.MessageId, "error", err.Error())
		_ = d.Nack(false, false)
		return
	}

	outcome, err := b.deliverer.Process(b.ctx, sub, env, b.Publish)
	switch {
	case err != nil, outcome == messaging.OutcomeAbandoned:
		_ = d.Nack(false, true)
	default:
		_ = d.Ack(false)
	}
}

func (b *Broker) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	b.cancel()
	b.wg.Wait()

	for _, ch := range b.channels {
		_ = ch.Close()
	}
	b.pubMu.Lock()
	_ = b.pubCh.Close()
	b.pubMu.Unlock()
	return b.conn.Close()
}
