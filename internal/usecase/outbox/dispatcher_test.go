//go:build unit

package outbox_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	repomem "bookstore-choreography/internal/infra/repository/memory"
	"bookstore-choreography/internal/pkg/clock"
	"bookstore-choreography/internal/pkg/config"
	"bookstore-choreography/internal/pkg/retry"
	"bookstore-choreography/internal/usecase/outbox"
	"bookstore-choreography/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type gatewayFunc func(ctx context.Context, key string, req shared.PaymentRequest) error

type recordingGateway struct {
	mu    sync.Mutex
	keys  []string
	reqs  []shared.PaymentRequest
	reply gatewayFunc
}

func (g *recordingGateway) Submit(ctx context.Context, key string, req shared.PaymentRequest) error {
	g.mu.Lock()
	g.keys = append(g.keys, key)
	g.reqs = append(g.reqs, req)
	reply := g.reply
	g.mu.Unlock()
	if reply == nil {
		return nil
	}
	return reply(ctx, key, req)
}

func (g *recordingGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.keys)
}

type DispatcherSuite struct {
	suite.Suite
	ctx     context.Context
	store   *repomem.Store
	gateway *recordingGateway
	disp    *outbox.Dispatcher
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = repomem.NewStore(clock.NewMockClock(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)))
	s.gateway = &recordingGateway{}
	cfg := config.NewTestConfig()
	cfg.Outbox.BatchSize = 2
	s.disp = outbox.NewDispatcher(s.store, s.gateway, cfg.Outbox, cfg.Payment, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (s *DispatcherSuite) enqueue(orderID int64) uuid.UUID {
	payload, err := json.Marshal(shared.PaymentRequest{
		OrderID:  orderID,
		BookID:   1,
		Quantity: 2,
		Amount:   decimal.RequireFromString("99.98"),
	})
	s.Require().NoError(err)
	id := uuid.New()
	s.Require().NoError(s.store.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Outbox().Add(ctx, &shared.OutboxMessage{ID: id, Topic: shared.TopicPaymentRequest, Payload: payload})
	}))
	return id
}

func (s *DispatcherSuite) rows() map[uuid.UUID]*shared.OutboxMessage {
	msgs, err := s.store.OutboxReader().List(s.ctx)
	s.Require().NoError(err)
	out := make(map[uuid.UUID]*shared.OutboxMessage, len(msgs))
	for _, m := range msgs {
		out[m.ID] = m
	}
	return out
}

func (s *DispatcherSuite) TestDrainsEveryBatch() {
	ids := []uuid.UUID{s.enqueue(1), s.enqueue(2), s.enqueue(3)}

	n, err := s.disp.DispatchPending(s.ctx)

	s.Require().NoError(err)
	s.Equal(3, n)
	rows := s.rows()
	for _, id := range ids {
		s.Equal(shared.OutboxSent, rows[id].Status)
		s.Equal(1, rows[id].Attempts)
	}
	s.ElementsMatch([]string{ids[0].String(), ids[1].String(), ids[2].String()}, s.gateway.keys)
	s.True(decimal.RequireFromString("99.98").Equal(s.gateway.reqs[0].Amount))
}

func (s *DispatcherSuite) TestRetriesThenSucceeds() {
	fails := 2
	s.gateway.reply = func(context.Context, string, shared.PaymentRequest) error {
		if fails > 0 {
			fails--
			return errors.New("payment service unavailable")
		}
		return nil
	}
	id := s.enqueue(1)

	_, err := s.disp.DispatchPending(s.ctx)

	s.Require().NoError(err)
	s.Equal(shared.OutboxSent, s.rows()[id].Status)
	s.Equal(3, s.rows()[id].Attempts)
}

func (s *DispatcherSuite) TestExhaustedRetriesMarkFailed() {
	s.gateway.reply = func(context.Context, string, shared.PaymentRequest) error {
		return errors.New("connection refused")
	}
	id := s.enqueue(1)

	_, err := s.disp.DispatchPending(s.ctx)

	s.Require().NoError(err)
	row := s.rows()[id]
	s.Equal(shared.OutboxFailed, row.Status)
	s.Equal(4, row.Attempts, "first attempt plus three retries")
	s.Contains(row.LastError, "connection refused")
}

func (s *DispatcherSuite) TestPermanentRejectionIsNotRetried() {
	s.gateway.reply = func(context.Context, string, shared.PaymentRequest) error {
		return retry.Permanent(errors.New("price mismatch"))
	}
	id := s.enqueue(1)

	_, err := s.disp.DispatchPending(s.ctx)

	s.Require().NoError(err)
	s.Equal(shared.OutboxFailed, s.rows()[id].Status)
	s.Equal(1, s.gateway.calls())
}

func (s *DispatcherSuite) TestCancelledDispatchStaysInFlightUntilRestart() {
	ctx, cancel := context.WithCancel(s.ctx)
	s.gateway.reply = func(context.Context, string, shared.PaymentRequest) error {
		cancel()
		return errors.New("interrupted")
	}
	id := s.enqueue(1)

	_, _ = s.disp.DispatchPending(ctx)
	s.Equal(shared.OutboxDispatching, s.rows()[id].Status)

	s.gateway.reply = nil
	s.Require().NoError(s.disp.Start(s.ctx))
	defer func() { s.Require().NoError(s.disp.Stop(s.ctx)) }()

	s.Eventually(func() bool { return s.rows()[id].Status == shared.OutboxSent }, time.Second, 5*time.Millisecond)
}

func (s *DispatcherSuite) TestNotifyWakesLoop() {
	s.Require().NoError(s.disp.Start(s.ctx))
	defer func() { s.Require().NoError(s.disp.Stop(s.ctx)) }()

	id := s.enqueue(7)
	s.disp.Notify()

	s.Eventually(func() bool { return s.rows()[id].Status == shared.OutboxSent }, time.Second, 5*time.Millisecond)
}

func (s *DispatcherSuite) TestBackingOffRowDoesNotHoldLaterOrders() {
	cfg := config.NewTestConfig()
	cfg.Payment.RetryBase = 200 * time.Millisecond
	s.disp = outbox.NewDispatcher(s.store, s.gateway, cfg.Outbox, cfg.Payment, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.gateway.reply = func(_ context.Context, _ string, req shared.PaymentRequest) error {
		if req.OrderID == 1 {
			return errors.New("payment service unavailable")
		}
		return nil
	}

	s.Require().NoError(s.disp.Start(s.ctx))
	defer func() { s.Require().NoError(s.disp.Stop(s.ctx)) }()

	stuck := s.enqueue(1)
	s.disp.Notify()
	s.Eventually(func() bool { return s.gateway.calls() >= 1 }, time.Second, 5*time.Millisecond)

	later := s.enqueue(2)
	s.disp.Notify()

	// order 1 needs 200+400+800ms of backoff before it is marked failed
	s.Eventually(func() bool { return s.rows()[later].Status == shared.OutboxSent }, 500*time.Millisecond, 5*time.Millisecond)
	s.Equal(shared.OutboxDispatching, s.rows()[stuck].Status)
}
