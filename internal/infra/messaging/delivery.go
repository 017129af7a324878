package messaging

import (
	"context"
	"log/slog"
	"time"

	"bookstore-choreography/internal/domain/event"
	"bookstore-choreography/internal/pkg/clock"
	"bookstore-choreography/internal/pkg/errs"
	"bookstore-choreography/internal/pkg/retry"
)

type Outcome string

const (
	// Handler succeeded
	OutcomeDone Outcome = "done"
	// Handler failed on every attempt; a Fault was produced
	OutcomeFaulted Outcome = "faulted"
	// Terminal handler failed; message discarded
	OutcomeDropped Outcome = "dropped"
	// Shutdown interrupted processing; the broker should requeue where it can
	OutcomeAbandoned Outcome = "abandoned"
)

type Result struct {
	Outcome  Outcome
	Attempts int
	Fault    *event.Fault
}

// Deliverer runs the per-message state machine
// Delivered → Done | Delivered → Redelivered×N → Faulted.
type Deliverer struct {
	opts    Options
	clock   clock.Clock
	logger  *slog.Logger
	metrics *Metrics
}

func NewDeliverer(opts Options, clk clock.Clock, logger *slog.Logger, metrics *Metrics) *Deliverer {
	return &Deliverer{
		opts:    opts,
		clock:   clk,
		logger:  logger.With("component", "delivery"),
		metrics: metrics,
	}
}

func (d *Deliverer) Options() Options { return d.opts }

func (d *Deliverer) Metrics() *Metrics { return d.metrics }

func (d *Deliverer) Deliver(ctx context.Context, sub Subscription, env event.Envelope) Result {
	policy := d.opts.RedeliveryPolicy(sub.Terminal)
	attempts := 0
	var failures []string
	start := time.Now()

	err := retry.Do(ctx, policy, func(ctx context.Context) error {
		attempts++
		herr := safeCall(ctx, sub.Handler, env)
		if herr == nil {
			return nil
		}
		failures = append(failures, herr.Error())
		return herr
	}, func(err error, wait time.Duration) {
		d.metrics.redelivered(sub.Queue)
		d.logger.Warn("redelivering message",
			"queue", sub.Queue,
			"message_id", env.ID.String(),
			"kind", string(env.Kind),
			"attempt", attempts,
			"wait", wait,
			"error", err.Error())
	})
	d.metrics.observe(sub.Queue, time.Since(start))

	res := Result{Attempts: attempts}
	switch {
	case err == nil:
		res.Outcome = OutcomeDone
	case ctx.Err() != nil:
		res.Outcome = OutcomeAbandoned
		d.logger.Info("delivery abandoned on shutdown", "queue", sub.Queue, "message_id", env.ID.String(), "attempts", attempts)
	case sub.Terminal:
		res.Outcome = OutcomeDropped
		d.logger.Error("terminal handler failed; message dropped",
			"queue", sub.Queue, "message_id", env.ID.String(), "kind", string(env.Kind), "error", err.Error())
	default:
		res.Outcome = OutcomeFaulted
		res.Fault = &event.Fault{
			Message:    env,
			Queue:      sub.Queue,
			Exceptions: failures,
			Attempts:   attempts,
			Timestamp:  d.clock.Now(),
		}
		d.logger.Error("message faulted after retries",
			"queue", sub.Queue,
			"message_id", env.ID.String(),
			"kind", string(env.Kind),
			"attempts", attempts,
			"error", err.Error())
	}
	d.metrics.outcome(sub.Queue, res.Outcome)
	return res
}

// Process delivers env and routes a resulting Fault to the queue's error channel.
// A non-nil error means the fault could not be routed and the message should stay unacknowledged.
func (d *Deliverer) Process(ctx context.Context, sub Subscription, env event.Envelope, publish PublishFunc) (Outcome, error) {
	res := d.Deliver(ctx, sub, env)
	if res.Outcome != OutcomeFaulted {
		return res.Outcome, nil
	}
	return res.Outcome, d.RouteFault(ctx, *res.Fault, publish)
}

// RouteFault publishes f to the error channel of the queue that produced it.
func (d *Deliverer) RouteFault(ctx context.Context, f event.Fault, publish PublishFunc) error {
	faultEnv, err := event.Wrap(f, d.clock.Now())
	if err != nil {
		return errs.Wrap(err, "wrap fault")
	}
	channel := event.ErrorChannel(f.Queue)
	if err := publish(context.WithoutCancel(ctx), channel, faultEnv); err != nil {
		d.logger.Error("failed to route fault", "channel", channel, "message_id", f.Message.ID.String(), "error", err.Error())
		return errs.Wrapf(err, "route fault to %s", channel)
	}
	return nil
}

func safeCall(ctx context.Context, h Handler, env event.Envelope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errs.Mark(errs.Newf("handler panic: %v", r), errs.ErrProcessingFault)
		}
	}()
	return h(ctx, env)
}

func (o Outcome) String() string { return string(o) }
