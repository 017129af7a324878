package memory

import (
	"context"
	"maps"
	"slices"

	"bookstore-choreography/internal/domain/order"
	"bookstore-choreography/internal/infra"

	"github.com/shopspring/decimal"
)

// OrderRepository reads from the tables returned by t; Store readers must only call read methods.
type OrderRepository struct {
	t func() *tables
}

func (r *OrderRepository) Create(_ context.Context, o *order.Order) (int64, error) {
	t := r.t()
	t.orderSeq++
	t.orders[t.orderSeq] = orderRow{
		bookID:    o.BookID(),
		bookTitle: o.BookTitle(),
		bookPrice: o.BookPrice(),
		quantity:  o.Quantity(),
		status:    o.Status().String(),
	}
	return t.orderSeq, nil
}

func (r *OrderRepository) FindByID(_ context.Context, id int64) (*order.Order, error) {
	row, ok := r.t().orders[id]
	if !ok {
		return nil, infra.NewRepoErr(infra.KindNotFound, "order not found", nil)
	}
	return row.toDomain(id), nil
}

func (r *OrderRepository) FindByBookID(_ context.Context, bookID int64) ([]*order.Order, error) {
	t := r.t()
	var out []*order.Order
	for _, id := range slices.Sorted(maps.Keys(t.orders)) {
		if row := t.orders[id]; row.bookID == bookID {
			out = append(out, row.toDomain(id))
		}
	}
	return out, nil
}

func (r *OrderRepository) List(_ context.Context) ([]*order.Order, error) {
	t := r.t()
	out := make([]*order.Order, 0, len(t.orders))
	for _, id := range slices.Sorted(maps.Keys(t.orders)) {
		out = append(out, t.orders[id].toDomain(id))
	}
	return out, nil
}

func (r *OrderRepository) UpdateStatusIf(_ context.Context, id int64, from, to order.Status) (bool, error) {
	t := r.t()
	row, ok := t.orders[id]
	if !ok {
		return false, infra.NewRepoErr(infra.KindNotFound, "order not found", nil)
	}
	if row.status != from.String() {
		return false, nil
	}
	row.status = to.String()
	t.orders[id] = row
	return true, nil
}

func (r *OrderRepository) UpdatePrice(_ context.Context, id int64, price decimal.Decimal) error {
	t := r.t()
	row, ok := t.orders[id]
	if !ok {
		return infra.NewRepoErr(infra.KindNotFound, "order not found", nil)
	}
	row.bookPrice = price
	t.orders[id] = row
	return nil
}

func (row orderRow) toDomain(id int64) *order.Order {
	return order.ReconstructOrder(id, row.bookID, row.bookTitle, row.bookPrice, row.quantity, order.Status(row.status))
}
