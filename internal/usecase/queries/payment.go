package queries

import (
	"context"

	"bookstore-choreography/internal/domain/payment"
)

type PaymentReadStore interface {
	List(ctx context.Context) ([]*payment.Payment, error)
}

type PaymentQueries interface {
	List(ctx context.Context) ([]*PaymentView, error)
}

type paymentQueriesImpl struct {
	repo PaymentReadStore
}

func NewPaymentQueries(repo PaymentReadStore) PaymentQueries {
	return &paymentQueriesImpl{repo: repo}
}

func (q *paymentQueriesImpl) List(ctx context.Context) ([]*PaymentView, error) {
	payments, err := q.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*PaymentView, len(payments))
	for i, p := range payments {
		out[i] = &PaymentView{
			ID:        p.ID(),
			OrderID:   p.OrderID(),
			BookID:    p.BookID(),
			Quantity:  p.Quantity(),
			Amount:    p.Amount(),
			CreatedAt: p.CreatedAt(),
		}
	}
	return out, nil
}
