package queries

import (
	"context"

	"bookstore-choreography/internal/domain/order"
	"bookstore-choreography/internal/infra"
	"bookstore-choreography/internal/pkg/errs"
)

var ErrOrderNotFound = errs.New("order not found")

type OrderReadStore interface {
	FindByID(ctx context.Context, id int64) (*order.Order, error)
	List(ctx context.Context) ([]*order.Order, error)
}

type OrderQueries interface {
	GetByID(ctx context.Context, id int64) (*OrderView, error)
	List(ctx context.Context) ([]*OrderView, error)
}

type orderQueriesImpl struct {
	repo OrderReadStore
}

func NewOrderQueries(repo OrderReadStore) OrderQueries {
	return &orderQueriesImpl{repo: repo}
}

func (q *orderQueriesImpl) GetByID(ctx context.Context, id int64) (*OrderView, error) {
	o, err := q.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsNotFound(err) {
			return nil, errs.Mark(errs.Wrapf(ErrOrderNotFound, "order %d", id), errs.ErrNotFound)
		}
		return nil, err
	}
	return toOrderView(o), nil
}

func (q *orderQueriesImpl) List(ctx context.Context) ([]*OrderView, error) {
	orders, err := q.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*OrderView, len(orders))
	for i, o := range orders {
		out[i] = toOrderView(o)
	}
	return out, nil
}

func toOrderView(o *order.Order) *OrderView {
	return &OrderView{
		ID:        o.ID(),
		BookID:    o.BookID(),
		BookTitle: o.BookTitle(),
		BookPrice: o.BookPrice(),
		Quantity:  o.Quantity(),
		Amount:    o.Amount(),
		Status:    o.Status().String(),
	}
}
