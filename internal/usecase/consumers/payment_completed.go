package consumers

import (
	"context"
	"log/slog"

	"bookstore-choreography/internal/domain/event"
	"bookstore-choreography/internal/domain/order"
	"bookstore-choreography/internal/infra"
	"bookstore-choreography/internal/usecase/shared"
)

// OrderStateReconciler moves orders to Paid when their payment completes.
type OrderStateReconciler struct {
	uow    shared.UnitOfWork
	logger *slog.Logger
}

func NewOrderStateReconciler(uow shared.UnitOfWork, logger *slog.Logger) *OrderStateReconciler {
	return &OrderStateReconciler{uow: uow, logger: logger.With("component", "order-state-reconciler")}
}

func (r *OrderStateReconciler) HandlePaymentCompleted(ctx context.Context, msg event.PaymentCompleted) error {
	var changed bool
	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var uerr error
		changed, uerr = tx.Orders().UpdateStatusIf(ctx, msg.OrderID, order.StatusPending, order.StatusPaid)
		return uerr
	})
	switch {
	case infra.IsNotFound(err):
		r.logger.Warn("payment completed for unknown order, dropping", "order_id", msg.OrderID)
		return nil
	case err != nil:
		return err
	case !changed:
		r.logger.Debug("order already paid", "order_id", msg.OrderID)
		return nil
	}

	r.logger.Info("order paid", "order_id", msg.OrderID, "amount", msg.Amount.String())
	return nil
}
