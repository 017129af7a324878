//go:build unit

package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bookstore-choreography/internal/domain/book"
	"bookstore-choreography/internal/domain/order"
	"bookstore-choreography/internal/domain/payment"
	"bookstore-choreography/internal/infra"
	"bookstore-choreography/internal/infra/repository/memory"
	"bookstore-choreography/internal/pkg/clock"
	"bookstore-choreography/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type StoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	clock *clock.MockClock
	store *memory.Store
}

func (s *StoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clock.NewMockClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	s.store = memory.NewStore(s.clock)
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) createOrder(bookID int64, price string, qty int) int64 {
	o, err := order.NewOrder(bookID, "Microservices in .NET", decimal.RequireFromString(price), qty)
	s.Require().NoError(err)
	var id int64
	s.Require().NoError(s.store.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		var cerr error
		id, cerr = tx.Orders().Create(ctx, o)
		return cerr
	}))
	return id
}

func (s *StoreTestSuite) TestWithinCommitsOnSuccess() {
	id := s.createOrder(1, "49.99", 2)
	s.Equal(int64(1), id)

	got, err := s.store.OrderReader().FindByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(order.StatusPending, got.Status())
	s.True(decimal.RequireFromString("99.98").Equal(got.Amount()))
}

func (s *StoreTestSuite) TestWithinRollsBackOnError() {
	errBoom := errors.New("boom")
	o, err := order.NewOrder(1, "t", decimal.NewFromInt(5), 1)
	s.Require().NoError(err)

	err = s.store.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		if _, cerr := tx.Orders().Create(ctx, o); cerr != nil {
			return cerr
		}
		if cerr := tx.Outbox().Add(ctx, &shared.OutboxMessage{ID: uuid.New(), Topic: shared.TopicPaymentRequest}); cerr != nil {
			return cerr
		}
		return errBoom
	})
	s.ErrorIs(err, errBoom)

	orders, err := s.store.OrderReader().List(s.ctx)
	s.Require().NoError(err)
	s.Empty(orders, "order write rolled back")

	msgs, err := s.store.OutboxReader().List(s.ctx)
	s.Require().NoError(err)
	s.Empty(msgs, "outbox write rolled back with the order")

	// sequence is rolled back too
	s.Equal(int64(1), s.createOrder(1, "5", 1))
}

func (s *StoreTestSuite) TestWithinHonoursCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	called := false
	err := s.store.Within(ctx, func(context.Context, shared.Tx) error {
		called = true
		return nil
	})
	s.ErrorIs(err, context.Canceled)
	s.False(called)
}

func (s *StoreTestSuite) TestOrderRepository() {
	first := s.createOrder(1, "49.99", 1)
	second := s.createOrder(1, "49.99", 3)
	other := s.createOrder(2, "10", 1)

	s.Run("FindByID not found", func() {
		_, err := s.store.OrderReader().FindByID(s.ctx, 999)
		s.True(infra.IsNotFound(err))
	})

	s.Run("FindByBookID filters by book", func() {
		orders, err := s.store.OrderReader().FindByBookID(s.ctx, 1)
		s.Require().NoError(err)
		s.Require().Len(orders, 2)
		s.Equal(first, orders[0].ID())
		s.Equal(second, orders[1].ID())
	})

	s.Run("UpdateStatusIf is guarded", func() {
		var changed, again bool
		s.Require().NoError(s.store.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
			var err error
			if changed, err = tx.Orders().UpdateStatusIf(ctx, first, order.StatusPending, order.StatusPaid); err != nil {
				return err
			}
			again, err = tx.Orders().UpdateStatusIf(ctx, first, order.StatusPending, order.StatusPaid)
			return err
		}))
		s.True(changed)
		s.False(again)

		got, err := s.store.OrderReader().FindByID(s.ctx, first)
		s.Require().NoError(err)
		s.Equal(order.StatusPaid, got.Status())
	})

	s.Run("UpdatePrice touches only the target", func() {
		s.Require().NoError(s.store.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
			return tx.Orders().UpdatePrice(ctx, other, decimal.RequireFromString("12.50"))
		}))
		got, err := s.store.OrderReader().FindByID(s.ctx, other)
		s.Require().NoError(err)
		s.True(decimal.RequireFromString("12.50").Equal(got.BookPrice()))

		untouched, err := s.store.OrderReader().FindByID(s.ctx, second)
		s.Require().NoError(err)
		s.True(decimal.RequireFromString("49.99").Equal(untouched.BookPrice()))
	})

	s.Run("missing rows report not found", func() {
		err := s.store.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
			_, err := tx.Orders().UpdateStatusIf(ctx, 404, order.StatusPending, order.StatusPaid)
			return err
		})
		s.True(infra.IsNotFound(err))

		err = s.store.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
			return tx.Orders().UpdatePrice(ctx, 404, decimal.NewFromInt(1))
		})
		s.True(infra.IsNotFound(err))
	})
}

func (s *StoreTestSuite) TestOutboxLifecycle() {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	s.Require().NoError(s.store.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		for _, id := range ids {
			if err := tx.Outbox().Add(ctx, &shared.OutboxMessage{ID: id, Topic: shared.TopicPaymentRequest, Payload: []byte(`{}`)}); err != nil {
				return err
			}
		}
		return nil
	}))

	var claimed []*shared.OutboxMessage
	s.Require().NoError(s.store.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		claimed, err = tx.Outbox().ClaimPending(ctx, 2)
		return err
	}))
	s.Require().Len(claimed, 2)
	s.Equal(ids[0], claimed[0].ID, "oldest first")
	s.Equal(ids[1], claimed[1].ID)
	s.Equal(shared.OutboxDispatching, claimed[0].Status)
	s.Equal(s.clock.Now(), claimed[0].CreatedAt)

	err := s.store.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Outbox().MarkSent(ctx, ids[0], 1); err != nil {
			return err
		}
		if err := tx.Outbox().MarkFailed(ctx, ids[1], 4, "payment service down"); err != nil {
			return err
		}
		return tx.Outbox().Add(ctx, &shared.OutboxMessage{ID: ids[0]})
	})
	s.True(infra.IsKind(err, infra.KindDuplicateKey), "duplicate id rolls back the whole unit")

	msgs, err := s.store.OutboxReader().List(s.ctx)
	s.Require().NoError(err)
	s.Equal(shared.OutboxDispatching, msgs[0].Status, "rolled back")

	s.Require().NoError(s.store.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Outbox().MarkSent(ctx, ids[0], 1); err != nil {
			return err
		}
		return tx.Outbox().MarkFailed(ctx, ids[1], 4, "payment service down")
	}))

	var reset int64
	s.Require().NoError(s.store.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		if _, err := tx.Outbox().ClaimPending(ctx, 10); err != nil {
			return err
		}
		var err error
		reset, err = tx.Outbox().ResetInFlight(ctx)
		return err
	}))
	s.Equal(int64(1), reset)

	msgs, err = s.store.OutboxReader().List(s.ctx)
	s.Require().NoError(err)
	s.Equal(shared.OutboxSent, msgs[0].Status)
	s.Equal(shared.OutboxFailed, msgs[1].Status)
	s.Equal(4, msgs[1].Attempts)
	s.Equal("payment service down", msgs[1].LastError)
	s.Equal(shared.OutboxPending, msgs[2].Status)
}

func (s *StoreTestSuite) TestBookAndPaymentRepositories() {
	b, err := book.NewBook("Microservices in .NET", decimal.RequireFromString("49.99"))
	s.Require().NoError(err)
	p, err := payment.NewPayment(1, 1, 2, decimal.RequireFromString("99.98"), s.clock.Now())
	s.Require().NoError(err)

	var bookID int64
	s.Require().NoError(s.store.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		if bookID, err = tx.Books().Create(ctx, b); err != nil {
			return err
		}
		_, err = tx.Payments().Create(ctx, p)
		return err
	}))

	n, err := s.store.BookReader().Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	s.Require().NoError(s.store.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		found, err := tx.Books().FindByID(ctx, bookID)
		if err != nil {
			return err
		}
		if err := found.Revise(found.Title(), decimal.RequireFromString("39.99")); err != nil {
			return err
		}
		return tx.Books().Update(ctx, found)
	}))

	books, err := s.store.BookReader().List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(books, 1)
	s.True(decimal.RequireFromString("39.99").Equal(books[0].Price()))

	err = s.store.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Books().Update(ctx, book.ReconstructBook(99, "x", decimal.NewFromInt(1)))
	})
	s.True(infra.IsNotFound(err))

	payments, err := s.store.PaymentReader().List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(payments, 1)
	s.Equal(int64(1), payments[0].ID())
	s.True(decimal.RequireFromString("99.98").Equal(payments[0].Amount()))
}

func TestStoreConcurrentWriters(t *testing.T) {
	store := memory.NewStore(clock.NewRealClock())
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o, err := order.NewOrder(1, "t", decimal.NewFromInt(1), 1)
			assert.NoError(t, err)
			assert.NoError(t, store.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
				_, err := tx.Orders().Create(ctx, o)
				return err
			}))
		}()
	}
	wg.Wait()

	orders, err := store.OrderReader().List(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 50)
	assert.Equal(t, int64(50), orders[49].ID())
}
