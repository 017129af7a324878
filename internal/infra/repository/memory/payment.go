package memory

import (
	"context"
	"maps"
	"slices"

	"bookstore-choreography/internal/domain/payment"
)

type PaymentRepository struct {
	t func() *tables
}

func (r *PaymentRepository) Create(_ context.Context, p *payment.Payment) (int64, error) {
	t := r.t()
	t.paymentSeq++
	t.payments[t.paymentSeq] = paymentRow{
		orderID:   p.OrderID(),
		bookID:    p.BookID(),
		quantity:  p.Quantity(),
		amount:    p.Amount(),
		createdAt: p.CreatedAt(),
	}
	return t.paymentSeq, nil
}

func (r *PaymentRepository) List(_ context.Context) ([]*payment.Payment, error) {
	t := r.t()
	out := make([]*payment.Payment, 0, len(t.payments))
	for _, id := range slices.Sorted(maps.Keys(t.payments)) {
		row := t.payments[id]
		out = append(out, payment.ReconstructPayment(id, row.orderID, row.bookID, row.quantity, row.amount, row.createdAt))
	}
	return out, nil
}
