package response

import (
	"bookstore-choreography/internal/domain/order"
	"bookstore-choreography/internal/usecase/queries"

	"github.com/jinzhu/copier"
	"github.com/shopspring/decimal"
)

type OrderResponse struct {
	ID        int64           `json:"id"`
	BookID    int64           `json:"bookId"`
	BookTitle string          `json:"bookTitle"`
	BookPrice decimal.Decimal `json:"bookPrice"`
	Quantity  int             `json:"quantity"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
}

func FromOrderView(v *queries.OrderView) *OrderResponse {
	var res OrderResponse
	_ = copier.Copy(&res, v)
	return &res
}

func FromOrderViews(vs []*queries.OrderView) []*OrderResponse {
	res := make([]*OrderResponse, len(vs))
	for i, v := range vs {
		res[i] = FromOrderView(v)
	}
	return res
}

func FromOrder(o *order.Order) *OrderResponse {
	return &OrderResponse{
		ID:        o.ID(),
		BookID:    o.BookID(),
		BookTitle: o.BookTitle(),
		BookPrice: o.BookPrice(),
		Quantity:  o.Quantity(),
		Amount:    o.Amount(),
		Status:    o.Status().String(),
	}
}
