package consumers

import (
	"context"
	"log/slog"
	"slices"

	"bookstore-choreography/internal/domain/event"
	"bookstore-choreography/internal/domain/order"
	"bookstore-choreography/internal/pkg/errs"
	"bookstore-choreography/internal/usecase/shared"
)

var ErrPriceUpdateRejected = errs.New("price update rejected for book")

// PricePropagationConsumer copies catalog price changes onto stored orders.
type PricePropagationConsumer struct {
	uow         shared.UnitOfWork
	policy      order.PricePolicy
	failBookIDs []int64
	logger      *slog.Logger
}

// failBookIDs lists books whose updates are always rejected, for exercising the fault path.
func NewPricePropagationConsumer(uow shared.UnitOfWork, policy order.PricePolicy, failBookIDs []int64, logger *slog.Logger) *PricePropagationConsumer {
	return &PricePropagationConsumer{
		uow:         uow,
		policy:      policy,
		failBookIDs: failBookIDs,
		logger:      logger.With("component", "price-propagation"),
	}
}

func (c *PricePropagationConsumer) HandleBookPriceUpdated(ctx context.Context, msg event.BookPriceUpdated) error {
	if slices.Contains(c.failBookIDs, msg.BookID) {
		return errs.Mark(errs.Wrapf(ErrPriceUpdateRejected, "book %d", msg.BookID), errs.ErrProcessingFault)
	}

	var updated, skipped int
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		updated, skipped = 0, 0
		orders, err := tx.Orders().FindByBookID(ctx, msg.BookID)
		if err != nil {
			return err
		}
		for _, o := range orders {
			if !c.policy.Applies(o) {
				skipped++
				continue
			}
			if !o.Reprice(msg.NewPrice) {
				continue
			}
			if err := tx.Orders().UpdatePrice(ctx, o.ID(), msg.NewPrice); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.logger.Info("book price propagated",
		"book_id", msg.BookID,
		"new_price", msg.NewPrice.String(),
		"updated", updated,
		"skipped", skipped)
	return nil
}
