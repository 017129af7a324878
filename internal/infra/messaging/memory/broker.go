// Package memory is an in-process fanout broker with per-queue FIFO buffers.
// It gives the single-binary deployment and the tests the same delivery
// semantics as the networked adapters, minus durability across restarts.
package memory

import (
	"context"
	"log/slog"
	"sync"

	"bookstore-choreography/internal/domain/event"
	"bookstore-choreography/internal/infra/messaging"
	"bookstore-choreography/internal/pkg/errs"

	"golang.org/x/sync/errgroup"
)

type Broker struct {
	mu       sync.RWMutex
	queues   map[string]*queue
	bindings map[string][]*queue
	closed   bool

	deliverer *messaging.Deliverer
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewBroker(d *messaging.Deliverer, logger *slog.Logger) *Broker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Broker{
		queues:    map[string]*queue{},
		bindings:  map[string][]*queue{},
		deliverer: d,
		logger:    logger.With("component", "memory-broker"),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Publish copies env into every queue bound to channel. Channels without
// bindings swallow the message, as a fanout exchange does.
func (b *Broker) Publish(ctx context.Context, channel string, env event.Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return messaging.ErrBrokerClosed
	}
	for _, q := range b.bindings[channel] {
		q.push(env)
	}
	b.deliverer.Metrics().Published(channel)
	return nil
}

func (b *Broker) Subscribe(sub messaging.Subscription) error {
	if err := sub.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return messaging.ErrBrokerClosed
	}
	if _, ok := b.queues[sub.Queue]; ok {
		return errs.Wrapf(messaging.ErrDuplicateQueue, "%s", sub.Queue)
	}

	q := newQueue()
	b.queues[sub.Queue] = q
	for _, ch := range sub.Channels {
		b.bindings[ch] = append(b.bindings[ch], q)
	}

	b.wg.Add(1)
	go b.consume(q, sub)
	b.logger.Debug("queue bound", "queue", sub.Queue, "channels", sub.Channels)
	return nil
}

// Close stops consumers and waits for in-flight handlers to return.
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
	return nil
}

// Depth reports messages waiting in queue, excluding ones being handled.
func (b *Broker) Depth(queue string) int {
	b.mu.RLock()
	q, ok := b.queues[queue]
	b.mu.RUnlock()
	if !ok {
		return 0
	}
	return q.len()
}

func (b *Broker) consume(q *queue, sub messaging.Subscription) {
	defer b.wg.Done()

	var g errgroup.Group
	if n := b.deliverer.Options().Concurrency; n > 0 {
		g.SetLimit(n)
	}
	defer func() { _ = g.Wait() }()

	for {
		env, ok := q.pop()
		if !ok {
			select {
			case <-b.ctx.Done():
				return
			case <-q.signal:
				continue
			}
		}
		if b.ctx.Err() != nil {
			return
		}
		g.Go(func() error {
			b.handle(sub, env)
			return nil
		})
	}
}

func (b *Broker) handle(sub messaging.Subscription, env event.Envelope) {
	outcome, err := b.deliverer.Process(b.ctx, sub, env, b.Publish)
	if err != nil {
		b.logger.Error("fault routing failed", "queue", sub.Queue, "message_id", env.ID.String(), "error", err.Error())
		return
	}
	if outcome == messaging.OutcomeAbandoned {
		b.logger.Warn("message lost on shutdown", "queue", sub.Queue, "message_id", env.ID.String())
	}
}

type queue struct {
	mu     sync.Mutex
	items  []event.Envelope
	signal chan struct{}
}

func newQueue() *queue {
	return &queue{signal: make(chan struct{}, 1)}
}

func (q *queue) push(env event.Envelope) {
	q.mu.Lock()
	q.items = append(q.items, env)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

func (q *queue) pop() (event.Envelope, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return event.Envelope{}, false
	}
	env := q.items[0]
	q.items[0] = event.Envelope{}
	q.items = q.items[1:]
	return env, true
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
