package request

import "bookstore-choreography/internal/usecase/commands"

type CreateOrderRequest struct {
	BookID   int64 `json:"bookId" binding:"required,min=1"`
	Quantity int   `json:"quantity" binding:"required,min=1"`
}

func (r *CreateOrderRequest) ToCommand() commands.CreateOrderRequest {
	return commands.CreateOrderRequest{BookID: r.BookID, Quantity: r.Quantity}
}
