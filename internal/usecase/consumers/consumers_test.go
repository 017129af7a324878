//go:build unit

package consumers_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"bookstore-choreography/internal/domain/event"
	"bookstore-choreography/internal/domain/order"
	repomem "bookstore-choreography/internal/infra/repository/memory"
	"bookstore-choreography/internal/pkg/clock"
	"bookstore-choreography/internal/pkg/errs"
	"bookstore-choreography/internal/usecase/consumers"
	"bookstore-choreography/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newStoreWithOrders(t *testing.T, orders ...*order.Order) (*repomem.Store, []int64) {
	t.Helper()
	store := repomem.NewStore(clock.NewMockClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	ids := make([]int64, 0, len(orders))
	require.NoError(t, store.Within(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		for _, o := range orders {
			id, err := tx.Orders().Create(ctx, o)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	}))
	return store, ids
}

func mustOrder(t *testing.T, bookID int64, price string, qty int) *order.Order {
	t.Helper()
	o, err := order.NewOrder(bookID, "Microservices in .NET", decimal.RequireFromString(price), qty)
	require.NoError(t, err)
	return o
}

func TestOrderStateReconciler(t *testing.T) {
	ctx := context.Background()
	store, ids := newStoreWithOrders(t, mustOrder(t, 1, "49.99", 2))
	r := consumers.NewOrderStateReconciler(store, discard)
	paid := event.PaymentCompleted{OrderID: ids[0], Amount: decimal.RequireFromString("99.98")}

	t.Run("pending becomes paid", func(t *testing.T) {
		require.NoError(t, r.HandlePaymentCompleted(ctx, paid))
		o, err := store.OrderReader().FindByID(ctx, ids[0])
		require.NoError(t, err)
		assert.Equal(t, order.StatusPaid, o.Status())
	})

	t.Run("already paid is a no-op", func(t *testing.T) {
		require.NoError(t, r.HandlePaymentCompleted(ctx, paid))
		o, err := store.OrderReader().FindByID(ctx, ids[0])
		require.NoError(t, err)
		assert.Equal(t, order.StatusPaid, o.Status())
	})

	t.Run("unknown order is dropped", func(t *testing.T) {
		assert.NoError(t, r.HandlePaymentCompleted(ctx, event.PaymentCompleted{OrderID: 404, Amount: decimal.NewFromInt(1)}))
	})
}

func TestPricePropagation(t *testing.T) {
	ctx := context.Background()
	newPrice := decimal.RequireFromString("39.99")

	tests := []struct {
		name       string
		policy     order.PricePolicy
		wantPaid   string
		wantUnpaid string
	}{
		{name: "latest reprices every order", policy: order.PricePolicyLatest, wantPaid: "39.99", wantUnpaid: "39.99"},
		{name: "preserve-paid keeps paid snapshots", policy: order.PricePolicyPreservePaid, wantPaid: "49.99", wantUnpaid: "39.99"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store, ids := newStoreWithOrders(t,
				mustOrder(t, 1, "49.99", 1),
				mustOrder(t, 1, "49.99", 3),
				mustOrder(t, 2, "15", 1),
			)
			require.NoError(t, consumers.NewOrderStateReconciler(store, discard).
				HandlePaymentCompleted(ctx, event.PaymentCompleted{OrderID: ids[0], Amount: decimal.RequireFromString("49.99")}))

			c := consumers.NewPricePropagationConsumer(store, tc.policy, nil, discard)
			require.NoError(t, c.HandleBookPriceUpdated(ctx, event.BookPriceUpdated{BookID: 1, NewPrice: newPrice}))

			get := func(id int64) *order.Order {
				o, err := store.OrderReader().FindByID(ctx, id)
				require.NoError(t, err)
				return o
			}
			assert.Equal(t, tc.wantPaid, get(ids[0]).BookPrice().String())
			assert.Equal(t, tc.wantUnpaid, get(ids[1]).BookPrice().String())
			assert.Equal(t, "119.97", get(ids[1]).Amount().String())
			assert.Equal(t, "15", get(ids[2]).BookPrice().String())
		})
	}
}

func TestPricePropagationRejectsConfiguredBooks(t *testing.T) {
	store, _ := newStoreWithOrders(t)
	c := consumers.NewPricePropagationConsumer(store, order.PricePolicyLatest, []int64{999}, discard)

	err := c.HandleBookPriceUpdated(context.Background(), event.BookPriceUpdated{BookID: 999, NewPrice: decimal.NewFromInt(1)})

	assert.True(t, errs.Is(err, consumers.ErrPriceUpdateRejected))
	assert.True(t, errs.Is(err, errs.ErrProcessingFault))
}

func TestErrorSinkKeepsMostRecent(t *testing.T) {
	sink := consumers.NewErrorSink(2, discard)
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for _, id := range ids {
		require.NoError(t, sink.HandleFault(context.Background(), event.Fault{
			Message: event.Envelope{ID: id, Kind: event.KindBookPriceUpdated},
			Queue:   event.QueueOrderPrice,
		}))
	}

	recent := sink.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, ids[1], recent[0].Message.ID)
	assert.Equal(t, ids[2], recent[1].Message.ID)
}

func TestErrorSinkSubscriptionIsTerminal(t *testing.T) {
	sub := consumers.NewErrorSink(0, discard).Subscription()

	assert.True(t, sub.Terminal)
	assert.Equal(t, event.QueueErrorSink, sub.Queue)
	assert.ElementsMatch(t, []string{"order-state-queue-error", "order-price-queue-error"}, sub.Channels)
}

func TestNotificationFaultsHaveTheirOwnSink(t *testing.T) {
	c := consumers.NewNotificationConsumer(discard)
	sub := c.FaultSubscription()

	assert.True(t, sub.Terminal)
	assert.Equal(t, event.QueueNotificationFaults, sub.Queue)
	assert.Equal(t, []string{"notification-queue-error"}, sub.Channels)

	env, err := event.Wrap(event.Fault{
		Message:  event.Envelope{ID: uuid.New(), Kind: event.KindPaymentCompleted},
		Queue:    event.QueueNotification,
		Attempts: 4,
	}, time.Now())
	require.NoError(t, err)
	assert.NoError(t, sub.Handler(context.Background(), env))
}
