// Package outbox drains payment requests persisted alongside their orders.
package outbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"bookstore-choreography/internal/pkg/config"
	"bookstore-choreography/internal/pkg/errs"
	"bookstore-choreography/internal/pkg/retry"
	"bookstore-choreography/internal/usecase/shared"

	"golang.org/x/sync/errgroup"
)

// Dispatcher submits pending outbox rows to the payment gateway.
// Rows end sent, or failed once the retry policy is exhausted; a row
// interrupted by shutdown stays dispatching until the next Start.
type Dispatcher struct {
	uow      shared.UnitOfWork
	gateway  shared.PaymentGateway
	policy   retry.Policy
	interval time.Duration
	batch    int
	logger   *slog.Logger

	wake chan struct{}

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewDispatcher(uow shared.UnitOfWork, gateway shared.PaymentGateway, cfg config.OutboxConfig, payment config.PaymentConfig, logger *slog.Logger) *Dispatcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	return &Dispatcher{
		uow:      uow,
		gateway:  gateway,
		policy:   retry.Exponential(payment.RetryLimit, payment.RetryBase),
		interval: cfg.PollInterval,
		batch:    max(cfg.BatchSize, 1),
		logger:   logger.With("component", "outbox-dispatcher"),
		wake:     make(chan struct{}, 1),
	}
}

// Notify wakes the loop without waiting for the next poll.
func (d *Dispatcher) Notify() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Start recovers rows abandoned by a previous process and launches the loop.
func (d *Dispatcher) Start(ctx context.Context) error {
	var reset int64
	err := d.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var rerr error
		reset, rerr = tx.Outbox().ResetInFlight(ctx)
		return rerr
	})
	if err != nil {
		return errs.Wrap(err, "reset in-flight outbox rows")
	}
	if reset > 0 {
		d.logger.Warn("requeued outbox rows left dispatching", "count", reset)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		return nil
	}
	runCtx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.done = make(chan struct{})
	go func() {
		defer close(d.done)
		d.Run(runCtx)
	}()
	return nil
}

// Stop cancels the loop and waits for it, or for ctx.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	cancel, done := d.cancel, d.done
	d.cancel = nil
	d.mu.Unlock()
	if cancel == nil {
		return nil
	}

	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run claims rows while dispatch slots are free and runs each in its own
// goroutine; a row backing off holds only its slot. Run returns once ctx is
// done and every dispatch has returned.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	slots := make(chan struct{}, d.batch)
	var inflight sync.WaitGroup
	defer inflight.Wait()

	for {
		if err := d.launch(ctx, slots, &inflight); err != nil && ctx.Err() == nil {
			d.logger.Error("outbox dispatch failed", "error", err.Error())
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-d.wake:
		}
	}
}

// launch is only called from the Run goroutine, so free slots can only grow
// between the capacity check and the sends.
func (d *Dispatcher) launch(ctx context.Context, slots chan struct{}, inflight *sync.WaitGroup) error {
	for ctx.Err() == nil {
		free := cap(slots) - len(slots)
		if free == 0 {
			return nil
		}
		claimed, err := d.claim(ctx, free)
		if err != nil {
			return err
		}
		for _, msg := range claimed {
			slots <- struct{}{}
			inflight.Add(1)
			go func() {
				defer inflight.Done()
				defer func() {
					<-slots
					d.Notify()
				}()
				if err := d.dispatch(ctx, msg); err != nil && ctx.Err() == nil {
					d.logger.Error("outbox row not settled", "outbox_id", msg.ID.String(), "error", err.Error())
				}
			}()
		}
		if len(claimed) < free {
			return nil
		}
	}
	return nil
}

func (d *Dispatcher) claim(ctx context.Context, limit int) ([]*shared.OutboxMessage, error) {
	var claimed []*shared.OutboxMessage
	err := d.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var cerr error
		claimed, cerr = tx.Outbox().ClaimPending(ctx, limit)
		return cerr
	})
	if err != nil {
		return nil, errs.Wrap(err, "claim outbox rows")
	}
	return claimed, nil
}

// DispatchPending drains pending rows batch by batch, waiting for each batch,
// and reports how many it handled.
func (d *Dispatcher) DispatchPending(ctx context.Context) (int, error) {
	total := 0
	for {
		claimed, err := d.claim(ctx, d.batch)
		if err != nil {
			return total, err
		}
		if len(claimed) == 0 {
			return total, nil
		}

		var g errgroup.Group
		for _, msg := range claimed {
			g.Go(func() error { return d.dispatch(ctx, msg) })
		}
		if err := g.Wait(); err != nil {
			return total, err
		}
		total += len(claimed)

		if len(claimed) < d.batch || ctx.Err() != nil {
			return total, ctx.Err()
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, msg *shared.OutboxMessage) error {
	attempts := msg.Attempts
	var sendErr error

	var req shared.PaymentRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		sendErr = errs.Wrap(err, "decode payment request")
	} else {
		sendErr = retry.Do(ctx, d.policy, func(ctx context.Context) error {
			attempts++
			return d.gateway.Submit(ctx, msg.ID.String(), req)
		}, func(err error, wait time.Duration) {
			d.logger.Warn("payment dispatch failed, retrying",
				"outbox_id", msg.ID.String(),
				"order_id", req.OrderID,
				"attempt", attempts,
				"wait", wait,
				"error", err.Error())
		})
	}

	if ctx.Err() != nil {
		// left dispatching; Start requeues it
		return nil
	}

	return d.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if sendErr != nil {
			d.logger.Error("payment dispatch abandoned",
				"outbox_id", msg.ID.String(),
				"order_id", req.OrderID,
				"attempts", attempts,
				"error", sendErr.Error())
			return tx.Outbox().MarkFailed(ctx, msg.ID, attempts, sendErr.Error())
		}
		d.logger.Info("payment dispatched", "outbox_id", msg.ID.String(), "order_id", req.OrderID, "attempts", attempts)
		return tx.Outbox().MarkSent(ctx, msg.ID, attempts)
	})
}
