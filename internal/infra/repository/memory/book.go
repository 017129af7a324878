package memory

import (
	"context"
	"maps"
	"slices"

	"bookstore-choreography/internal/domain/book"
	"bookstore-choreography/internal/infra"
)

type BookRepository struct {
	t func() *tables
}

func (r *BookRepository) Create(_ context.Context, b *book.Book) (int64, error) {
	t := r.t()
	t.bookSeq++
	t.books[t.bookSeq] = bookRow{title: b.Title(), price: b.Price()}
	return t.bookSeq, nil
}

func (r *BookRepository) FindByID(_ context.Context, id int64) (*book.Book, error) {
	row, ok := r.t().books[id]
	if !ok {
		return nil, infra.NewRepoErr(infra.KindNotFound, "book not found", nil)
	}
	return book.ReconstructBook(id, row.title, row.price), nil
}

func (r *BookRepository) List(_ context.Context) ([]*book.Book, error) {
	t := r.t()
	out := make([]*book.Book, 0, len(t.books))
	for _, id := range slices.Sorted(maps.Keys(t.books)) {
		row := t.books[id]
		out = append(out, book.ReconstructBook(id, row.title, row.price))
	}
	return out, nil
}

func (r *BookRepository) Update(_ context.Context, b *book.Book) error {
	t := r.t()
	if _, ok := t.books[b.ID()]; !ok {
		return infra.NewRepoErr(infra.KindNotFound, "book not found", nil)
	}
	t.books[b.ID()] = bookRow{title: b.Title(), price: b.Price()}
	return nil
}

func (r *BookRepository) Count(_ context.Context) (int64, error) {
	return int64(len(r.t().books)), nil
}
