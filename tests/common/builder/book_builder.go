//go:build unit || e2e

package builder

import (
	"bookstore-choreography/internal/domain/book"
	reqdto "bookstore-choreography/internal/handler/dto/request"
	"bookstore-choreography/internal/usecase/queries"
	"bookstore-choreography/internal/usecase/shared"

	"github.com/shopspring/decimal"
)

type BookBuilder struct {
	ID    int64
	Title string
	Price decimal.Decimal
}

func NewBookBuilder() *BookBuilder {
	return &BookBuilder{
		ID:    1,
		Title: "Microservices in .NET",
		Price: decimal.RequireFromString("49.99"),
	}
}

func (b *BookBuilder) With(mutate func(*BookBuilder)) *BookBuilder {
	mutate(b)
	return b
}

func (b *BookBuilder) BuildDomain() *book.Book {
	return book.ReconstructBook(b.ID, b.Title, b.Price)
}

func (b *BookBuilder) BuildView() *queries.BookView {
	return &queries.BookView{ID: b.ID, Title: b.Title, Price: b.Price}
}

func (b *BookBuilder) BuildSnapshot() *shared.BookSnapshot {
	return &shared.BookSnapshot{ID: b.ID, Title: b.Title, Price: b.Price}
}

func (b *BookBuilder) BuildRequestDTO() reqdto.BookRequest {
	return reqdto.BookRequest{Title: b.Title, Price: b.Price}
}
