package commands

import (
	"context"
	"encoding/json"
	"log/slog"

	"bookstore-choreography/internal/domain/order"
	"bookstore-choreography/internal/pkg/errs"
	"bookstore-choreography/internal/usecase/shared"

	"github.com/google/uuid"
)

type CreateOrderRequest struct {
	BookID   int64
	Quantity int
}

type OrderCommands interface {
	// CreateOrder persists a Pending order and schedules its payment; it never waits for the payment.
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*order.Order, error)
}

type orderUseCaseImpl struct {
	uow      shared.UnitOfWork
	catalog  shared.CatalogClient
	notifier shared.OutboxNotifier
	logger   *slog.Logger
}

func NewOrderUseCase(uow shared.UnitOfWork, catalog shared.CatalogClient, notifier shared.OutboxNotifier, logger *slog.Logger) OrderCommands {
	return &orderUseCaseImpl{
		uow:      uow,
		catalog:  catalog,
		notifier: notifier,
		logger:   logger.With("component", "order-commands"),
	}
}

func (uc *orderUseCaseImpl) CreateOrder(ctx context.Context, req CreateOrderRequest) (*order.Order, error) {
	if req.Quantity < 1 {
		return nil, errs.Mark(order.ErrInvalidQuantity, errs.ErrInvalidInput)
	}

	book, err := uc.catalog.GetBook(ctx, req.BookID)
	if err != nil {
		return nil, err
	}

	o, err := order.NewOrder(req.BookID, book.Title, book.Price, req.Quantity)
	if err != nil {
		return nil, err
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		id, derr := tx.Orders().Create(ctx, o)
		if derr != nil {
			return derr
		}
		o = o.WithID(id)

		payload, derr := json.Marshal(shared.PaymentRequest{
			OrderID:  o.ID(),
			BookID:   o.BookID(),
			Quantity: o.Quantity(),
			Amount:   o.Amount(),
		})
		if derr != nil {
			return errs.Wrap(derr, "encode payment request")
		}
		return tx.Outbox().Add(ctx, &shared.OutboxMessage{
			ID:      uuid.New(),
			Topic:   shared.TopicPaymentRequest,
			Payload: payload,
		})
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.Notify()
	uc.logger.Info("order created",
		"order_id", o.ID(),
		"book_id", o.BookID(),
		"quantity", o.Quantity(),
		"amount", o.Amount().String())
	return o, nil
}
