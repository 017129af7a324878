package commands

import (
	"context"
	"log/slog"
	"time"

	"bookstore-choreography/internal/domain/event"
	"bookstore-choreography/internal/domain/payment"
	"bookstore-choreography/internal/pkg/clock"
	"bookstore-choreography/internal/usecase/shared"

	"github.com/shopspring/decimal"
)

const paymentIdempotencyScope = "payments"

type ProcessPaymentRequest struct {
	OrderID        int64
	BookID         int64
	Quantity       int
	Amount         decimal.Decimal
	IdempotencyKey string
}

type ProcessPaymentResult struct {
	PaymentID int64
	// Duplicate is set when the idempotency key was already processed
	Duplicate bool
}

type PaymentCommands interface {
	ProcessPayment(ctx context.Context, req ProcessPaymentRequest) (*ProcessPaymentResult, error)
}

type paymentUseCaseImpl struct {
	uow             shared.UnitOfWork
	catalog         shared.CatalogClient
	publisher       shared.EventPublisher
	idempotency     shared.IdempotencyStore
	clock           clock.Clock
	settlementDelay time.Duration
	logger          *slog.Logger
}

func NewPaymentUseCase(
	uow shared.UnitOfWork,
	catalog shared.CatalogClient,
	publisher shared.EventPublisher,
	idempotency shared.IdempotencyStore,
	clk clock.Clock,
	settlementDelay time.Duration,
	logger *slog.Logger,
) PaymentCommands {
	return &paymentUseCaseImpl{
		uow:             uow,
		catalog:         catalog,
		publisher:       publisher,
		idempotency:     idempotency,
		clock:           clk,
		settlementDelay: settlementDelay,
		logger:          logger.With("component", "payment-commands"),
	}
}

func (uc *paymentUseCaseImpl) ProcessPayment(ctx context.Context, req ProcessPaymentRequest) (*ProcessPaymentResult, error) {
	if req.IdempotencyKey != "" {
		claimed, err := uc.idempotency.TryClaim(ctx, paymentIdempotencyScope, req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if !claimed {
			uc.logger.Info("duplicate payment submission ignored", "order_id", req.OrderID, "idempotency_key", req.IdempotencyKey)
			return &ProcessPaymentResult{Duplicate: true}, nil
		}
	}

	res, err := uc.process(ctx, req)
	if err != nil && req.IdempotencyKey != "" {
		// let the sender retry with the same key
		if rerr := uc.idempotency.Release(context.WithoutCancel(ctx), paymentIdempotencyScope, req.IdempotencyKey); rerr != nil {
			uc.logger.Warn("failed to release idempotency key", "idempotency_key", req.IdempotencyKey, "error", rerr.Error())
		}
	}
	return res, err
}

func (uc *paymentUseCaseImpl) process(ctx context.Context, req ProcessPaymentRequest) (*ProcessPaymentResult, error) {
	book, err := uc.catalog.GetBook(ctx, req.BookID)
	if err != nil {
		return nil, err
	}

	p, err := payment.NewPayment(req.OrderID, req.BookID, req.Quantity, req.Amount, uc.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := p.VerifyAgainst(book.Price); err != nil {
		uc.logger.Warn("payment rejected", "order_id", req.OrderID, "error", err.Error())
		return nil, err
	}

	var id int64
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var derr error
		id, derr = tx.Payments().Create(ctx, p)
		return derr
	})
	if err != nil {
		return nil, err
	}

	// settlement is cut short on cancellation, but the completion event still goes out
	_ = clock.Sleep(ctx, uc.settlementDelay)

	completed := event.PaymentCompleted{OrderID: req.OrderID, Amount: req.Amount}
	if err := uc.publisher.Publish(context.WithoutCancel(ctx), event.ChannelPaymentEvents, completed); err != nil {
		uc.logger.Error("failed to publish payment completion", "order_id", req.OrderID, "payment_id", id, "error", err.Error())
		return nil, err
	}

	uc.logger.Info("payment processed", "payment_id", id, "order_id", req.OrderID, "amount", req.Amount.String())
	return &ProcessPaymentResult{PaymentID: id}, nil
}
