package request

import (
	"bookstore-choreography/internal/usecase/commands"

	"github.com/shopspring/decimal"
)

type BookRequest struct {
	Title string          `json:"title" binding:"required,max=200"`
	Price decimal.Decimal `json:"price"`
}

func (r *BookRequest) ToInput() commands.BookInput {
	return commands.BookInput{Title: r.Title, Price: r.Price}
}
