package request

import (
	"bookstore-choreography/internal/usecase/commands"

	"github.com/shopspring/decimal"
)

// Amount is validated by the handler; binding tags do not understand decimals.
type ProcessPaymentRequest struct {
	OrderID  int64           `json:"orderId" binding:"required,min=1"`
	BookID   int64           `json:"bookId" binding:"required,min=1"`
	Quantity int             `json:"quantity" binding:"required,min=1"`
	Amount   decimal.Decimal `json:"amount"`
}

func (r *ProcessPaymentRequest) ToCommand(idempotencyKey string) commands.ProcessPaymentRequest {
	return commands.ProcessPaymentRequest{
		OrderID:        r.OrderID,
		BookID:         r.BookID,
		Quantity:       r.Quantity,
		Amount:         r.Amount,
		IdempotencyKey: idempotencyKey,
	}
}
