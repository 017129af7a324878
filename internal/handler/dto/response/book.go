package response

import (
	"bookstore-choreography/internal/domain/book"
	"bookstore-choreography/internal/usecase/queries"

	"github.com/jinzhu/copier"
	"github.com/shopspring/decimal"
)

type BookResponse struct {
	ID    int64           `json:"id"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
}

func FromBookView(v *queries.BookView) *BookResponse {
	var res BookResponse
	_ = copier.Copy(&res, v)
	return &res
}

func FromBookViews(vs []*queries.BookView) []*BookResponse {
	res := make([]*BookResponse, len(vs))
	for i, v := range vs {
		res[i] = FromBookView(v)
	}
	return res
}

func FromBook(b *book.Book) *BookResponse {
	return &BookResponse{ID: b.ID(), Title: b.Title(), Price: b.Price()}
}
