//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"bookstore-choreography/internal/domain/book"
	"bookstore-choreography/internal/domain/event"
	"bookstore-choreography/internal/domain/order"
	"bookstore-choreography/internal/domain/payment"
	"bookstore-choreography/internal/infra/repository/memory"
	"bookstore-choreography/internal/pkg/clock"
	"bookstore-choreography/internal/pkg/errs"
	"bookstore-choreography/internal/usecase/queries"
	"bookstore-choreography/internal/usecase/shared"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)

func seed(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore(clock.NewMockClock(now))
	require.NoError(t, store.Within(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		b, err := book.NewBook("Microservices in .NET", decimal.RequireFromString("49.99"))
		if err != nil {
			return err
		}
		if _, err := tx.Books().Create(ctx, b); err != nil {
			return err
		}
		o, err := order.NewOrder(1, "Microservices in .NET", decimal.RequireFromString("49.99"), 2)
		if err != nil {
			return err
		}
		if _, err := tx.Orders().Create(ctx, o); err != nil {
			return err
		}
		p, err := payment.NewPayment(1, 1, 2, decimal.RequireFromString("99.98"), now)
		if err != nil {
			return err
		}
		_, err = tx.Payments().Create(ctx, p)
		return err
	}))
	return store
}

func TestOrderQueries(t *testing.T) {
	q := queries.NewOrderQueries(seed(t).OrderReader())
	ctx := context.Background()

	got, err := q.GetByID(ctx, 1)
	require.NoError(t, err)
	want := &queries.OrderView{
		ID:        1,
		BookID:    1,
		BookTitle: "Microservices in .NET",
		BookPrice: decimal.RequireFromString("49.99"),
		Quantity:  2,
		Amount:    decimal.RequireFromString("99.98"),
		Status:    "Pending",
	}
	decimalEq := cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })
	assert.Empty(t, cmp.Diff(want, got, decimalEq))

	list, err := q.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = q.GetByID(ctx, 42)
	assert.True(t, errs.Is(err, errs.ErrNotFound))
	assert.True(t, errs.Is(err, queries.ErrOrderNotFound))
}

func TestBookQueries(t *testing.T) {
	q := queries.NewBookQueries(seed(t).BookReader())
	ctx := context.Background()

	got, err := q.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Microservices in .NET", got.Title)
	assert.Equal(t, "49.99", got.Price.String())

	_, err = q.GetByID(ctx, 2)
	assert.True(t, errs.Is(err, errs.ErrNotFound))
}

func TestPaymentQueries(t *testing.T) {
	q := queries.NewPaymentQueries(seed(t).PaymentReader())

	list, err := q.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].OrderID)
	assert.Equal(t, "99.98", list[0].Amount.String())
	assert.Equal(t, now, list[0].CreatedAt)
}

type staticFaults []event.Fault

func (s staticFaults) Recent() []event.Fault { return s }

func TestFaultQueriesNewestFirst(t *testing.T) {
	older := event.Fault{Message: event.Envelope{ID: uuid.New(), Kind: event.KindBookPriceUpdated}, Queue: "order-price-queue", Attempts: 4}
	newer := event.Fault{Message: event.Envelope{ID: uuid.New(), Kind: event.KindPaymentCompleted}, Queue: "order-state-queue", Attempts: 1}

	views := queries.NewFaultQueries(staticFaults{older, newer}).Recent(context.Background())

	require.Len(t, views, 2)
	assert.Equal(t, newer.Message.ID.String(), views[0].MessageID)
	assert.Equal(t, "order-price-queue", views[1].Queue)
	assert.Equal(t, 4, views[1].Attempts)
}
