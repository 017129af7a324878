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
	"bookstore-choreography/internal/infra/idempotency"
	"bookstore-choreography/internal/infra/messaging"
	"bookstore-choreography/internal/infra/messaging/memory"
	repomem "bookstore-choreography/internal/infra/repository/memory"
	"bookstore-choreography/internal/pkg/clock"
	"bookstore-choreography/internal/usecase/commands"
	"bookstore-choreography/internal/usecase/consumers"
	"bookstore-choreography/internal/usecase/shared"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

const failingBookID = 999

type stubCatalog map[int64]shared.BookSnapshot

func (c stubCatalog) GetBook(_ context.Context, id int64) (*shared.BookSnapshot, error) {
	b, ok := c[id]
	if !ok {
		return nil, commands.ErrBookNotFound
	}
	return &b, nil
}

type nopNotifier struct{}

func (nopNotifier) Notify() {}

// ChoreographySuite runs the order, payment and catalog sides against one in-process broker.
type ChoreographySuite struct {
	suite.Suite
	ctx       context.Context
	clock     *clock.MockClock
	broker    *memory.Broker
	publisher *messaging.Publisher
	orders    *repomem.Store
	payments  *repomem.Store
	sink      *consumers.ErrorSink

	orderCmds   commands.OrderCommands
	paymentCmds commands.PaymentCommands
}

func TestChoreographySuite(t *testing.T) {
	suite.Run(t, new(ChoreographySuite))
}

func (s *ChoreographySuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clock.NewMockClock(time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	opts := messaging.Options{RetryLimit: 3, RetryInterval: time.Millisecond}
	d := messaging.NewDeliverer(opts, s.clock, logger, messaging.NewMetrics(prometheus.NewRegistry()))
	s.broker = memory.NewBroker(d, logger)
	s.publisher = messaging.NewPublisher(s.broker, s.clock, logger)

	s.orders = repomem.NewStore(s.clock)
	s.payments = repomem.NewStore(s.clock)
	catalog := stubCatalog{
		1:             {ID: 1, Title: "Microservices in .NET", Price: decimal.RequireFromString("49.99")},
		failingBookID: {ID: failingBookID, Title: "Unlucky", Price: decimal.NewFromInt(10)},
	}

	s.sink = consumers.NewErrorSink(10, logger)
	notifications := consumers.NewNotificationConsumer(logger)
	s.Require().NoError(messaging.SubscribeAll(s.broker,
		consumers.NewOrderStateReconciler(s.orders, logger).Subscription(),
		consumers.NewPricePropagationConsumer(s.orders, order.PricePolicyLatest, []int64{failingBookID}, logger).Subscription(),
		notifications.Subscription(),
		notifications.FaultSubscription(),
		s.sink.Subscription(),
	))

	s.orderCmds = commands.NewOrderUseCase(s.orders, catalog, nopNotifier{}, logger)
	s.paymentCmds = commands.NewPaymentUseCase(s.payments, catalog, s.publisher,
		idempotency.NewMemoryStore(time.Hour, s.clock), s.clock, 0, logger)
}

func (s *ChoreographySuite) TearDownTest() {
	s.Require().NoError(s.broker.Close())
}

func (s *ChoreographySuite) order(id int64) *order.Order {
	o, err := s.orders.OrderReader().FindByID(s.ctx, id)
	s.Require().NoError(err)
	return o
}

func (s *ChoreographySuite) pay(o *order.Order) {
	_, err := s.paymentCmds.ProcessPayment(s.ctx, commands.ProcessPaymentRequest{
		OrderID:        o.ID(),
		BookID:         o.BookID(),
		Quantity:       o.Quantity(),
		Amount:         o.Amount(),
		IdempotencyKey: "order-" + o.BookTitle(),
	})
	s.Require().NoError(err)
}

func (s *ChoreographySuite) TestOrderBecomesPaidAfterPayment() {
	o, err := s.orderCmds.CreateOrder(s.ctx, commands.CreateOrderRequest{BookID: 1, Quantity: 2})
	s.Require().NoError(err)
	s.Equal(order.StatusPending, o.Status())
	s.Equal("99.98", o.Amount().String())

	s.pay(o)

	s.Eventually(func() bool { return s.order(o.ID()).Status() == order.StatusPaid }, time.Second, 5*time.Millisecond)
	payments, err := s.payments.PaymentReader().List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(payments, 1)
	s.Equal("99.98", payments[0].Amount().String())
}

func (s *ChoreographySuite) TestPriceUpdatePropagatesToOrders() {
	o, err := s.orderCmds.CreateOrder(s.ctx, commands.CreateOrderRequest{BookID: 1, Quantity: 1})
	s.Require().NoError(err)

	s.Require().NoError(s.publisher.Publish(s.ctx, event.ChannelBookPriceEvents,
		event.BookPriceUpdated{BookID: 1, NewPrice: decimal.RequireFromString("39.99")}))

	s.Eventually(func() bool { return s.order(o.ID()).BookPrice().String() == "39.99" }, time.Second, 5*time.Millisecond)
	s.Empty(s.sink.Recent())
}

func (s *ChoreographySuite) TestRejectedPriceUpdateEndsInErrorSink() {
	o, err := s.orderCmds.CreateOrder(s.ctx, commands.CreateOrderRequest{BookID: failingBookID, Quantity: 1})
	s.Require().NoError(err)

	s.Require().NoError(s.publisher.Publish(s.ctx, event.ChannelBookPriceEvents,
		event.BookPriceUpdated{BookID: failingBookID, NewPrice: decimal.NewFromInt(12)}))

	s.Eventually(func() bool { return len(s.sink.Recent()) == 1 }, time.Second, 5*time.Millisecond)
	fault := s.sink.Recent()[0]
	s.Equal(event.QueueOrderPrice, fault.Queue)
	s.Equal(4, fault.Attempts)
	s.Equal(event.KindBookPriceUpdated, fault.Message.Kind)

	s.Equal("10", s.order(o.ID()).BookPrice().String())

	// the pipeline keeps flowing after a fault
	s.pay(o)
	s.Eventually(func() bool { return s.order(o.ID()).Status() == order.StatusPaid }, time.Second, 5*time.Millisecond)
	s.Len(s.sink.Recent(), 1)
}
