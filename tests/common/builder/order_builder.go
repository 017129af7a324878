//go:build unit || e2e

package builder

import (
	"bookstore-choreography/internal/domain/order"
	reqdto "bookstore-choreography/internal/handler/dto/request"
	"bookstore-choreography/internal/usecase/commands"
	"bookstore-choreography/internal/usecase/queries"

	"github.com/shopspring/decimal"
)

type OrderBuilder struct {
	ID        int64
	BookID    int64
	BookTitle string
	BookPrice decimal.Decimal
	Quantity  int
	Status    order.Status
}

func NewOrderBuilder() *OrderBuilder {
	return &OrderBuilder{
		ID:        1,
		BookID:    1,
		BookTitle: "Microservices in .NET",
		BookPrice: decimal.RequireFromString("49.99"),
		Quantity:  2,
		Status:    order.StatusPending,
	}
}

func (b *OrderBuilder) With(mutate func(*OrderBuilder)) *OrderBuilder {
	mutate(b)
	return b
}

func (b *OrderBuilder) BuildDomain() *order.Order {
	return order.ReconstructOrder(b.ID, b.BookID, b.BookTitle, b.BookPrice, b.Quantity, b.Status)
}

func (b *OrderBuilder) BuildView() *queries.OrderView {
	return &queries.OrderView{
		ID:        b.ID,
		BookID:    b.BookID,
		BookTitle: b.BookTitle,
		BookPrice: b.BookPrice,
		Quantity:  b.Quantity,
		Amount:    b.BookPrice.Mul(decimal.NewFromInt(int64(b.Quantity))),
		Status:    b.Status.String(),
	}
}

func (b *OrderBuilder) BuildCreateRequestDTO() reqdto.CreateOrderRequest {
	return reqdto.CreateOrderRequest{BookID: b.BookID, Quantity: b.Quantity}
}

func (b *OrderBuilder) BuildCreateCommand() commands.CreateOrderRequest {
	return commands.CreateOrderRequest{BookID: b.BookID, Quantity: b.Quantity}
}

// BuildPaymentRequestDTO pays the order in full.
func (b *OrderBuilder) BuildPaymentRequestDTO() reqdto.ProcessPaymentRequest {
	return reqdto.ProcessPaymentRequest{
		OrderID:  b.ID,
		BookID:   b.BookID,
		Quantity: b.Quantity,
		Amount:   b.BookPrice.Mul(decimal.NewFromInt(int64(b.Quantity))),
	}
}
