// Package kafka maps channels to topics and queues to consumer groups.
// Messages of one reader are handled concurrently up to Options.Concurrency;
// offsets are committed per partition in offset order once every earlier
// message of that partition has settled.
package kafka

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"bookstore-choreography/internal/domain/event"
	"bookstore-choreography/internal/infra/messaging"
	"bookstore-choreography/internal/pkg/clock"
	"bookstore-choreography/internal/pkg/errs"

	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"
)

const (
	headerKind   = "kind"
	fetchBackoff = time.Second
)

type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type readerFactory func(brokers []string, group, topic string) reader

func newGroupReader(brokers []string, group, topic string) reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  group,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}

type Broker struct {
	brokers    []string
	writer     writer
	openReader readerFactory
	// wait between failed fetches and between attempts to route a fault
	backoff time.Duration

	mu      sync.Mutex
	readers []reader
	closed  bool

	deliverer *messaging.Deliverer
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewBroker(brokers []string, d *messaging.Deliverer, logger *slog.Logger) *Broker {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return newBroker(brokers, w, newGroupReader, d, logger)
}

func newBroker(brokers []string, w writer, open readerFactory, d *messaging.Deliverer, logger *slog.Logger) *Broker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Broker{
		brokers:    brokers,
		writer:     w,
		openReader: open,
		backoff:    fetchBackoff,
		deliverer:  d,
		logger:     logger.With("component", "kafka-broker"),
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (b *Broker) Publish(ctx context.Context, channel string, env event.Envelope) error {
	body, err := env.Encode()
	if err != nil {
		return errs.Wrap(err, "encode envelope")
	}
	err = b.writer.WriteMessages(ctx, kafka.Message{
		Topic:   channel,
		Key:     []byte(env.ID.String()),
		Value:   body,
		Time:    env.PublishedAt,
		Headers: []kafka.Header{{Key: headerKind, Value: []byte(env.Kind)}},
	})
	if err != nil {
		return errs.Wrapf(err, "write to %s", channel)
	}
	b.deliverer.Metrics().Published(channel)
	return nil
}

// Subscribe starts one group reader per channel, all sharing the queue name as group id.
func (b *Broker) Subscribe(sub messaging.Subscription) error {
	if err := sub.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return messaging.ErrBrokerClosed
	}

	for _, channel := range sub.Channels {
		r := b.openReader(b.brokers, sub.Queue, channel)
		b.readers = append(b.readers, r)
		b.wg.Add(1)
		go b.consume(sub, channel, r)
	}
	return nil
}

func (b *Broker) consume(sub messaging.Subscription, topic string, r reader) {
	defer b.wg.Done()

	var g errgroup.Group
	if n := b.deliverer.Options().Concurrency; n > 0 {
		g.SetLimit(n)
	}
	defer func() { _ = g.Wait() }()

	offsets := newCommitter(r)
	for {
		m, err := r.FetchMessage(b.ctx)
		if err != nil {
			if b.ctx.Err() != nil {
				return
			}
			b.logger.Warn("fetch failed", "queue", sub.Queue, "topic", topic, "error", err.Error())
			if clock.Sleep(b.ctx, b.backoff) != nil {
				return
			}
			continue
		}

		p := offsets.track(m)
		g.Go(func() error {
			if b.handle(sub, m) {
				if err := offsets.settle(context.WithoutCancel(b.ctx), p); err != nil {
					b.logger.Warn("commit failed", "topic", m.Topic, "partition", m.Partition, "offset", m.Offset, "error", err.Error())
				}
			}
			return nil
		})
	}
}

// handle reports whether m settled and may be committed. A message left
// unsettled is fetched again by the group after restart.
func (b *Broker) handle(sub messaging.Subscription, m kafka.Message) bool {
	env, err := event.DecodeEnvelope(m.Value)
	if err != nil {
		b.logger.Error("skipping undecodable message",
			"queue", sub.Queue, "topic", m.Topic, "offset", m.Offset, "error", err.Error())
		return true
	}

	res := b.deliverer.Deliver(b.ctx, sub, env)
	if res.Outcome == messaging.OutcomeAbandoned {
		return false
	}
	if res.Outcome != messaging.OutcomeFaulted {
		return true
	}
	for {
		if err := b.deliverer.RouteFault(b.ctx, *res.Fault, b.Publish); err == nil {
			return true
		}
		if clock.Sleep(b.ctx, b.backoff) != nil {
			b.logger.Warn("fault not routed before shutdown; offset left uncommitted",
				"queue", sub.Queue, "message_id", env.ID.String(), "offset", m.Offset)
			return false
		}
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

	var firstErr error
	for _, r := range b.readers {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := b.writer.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
