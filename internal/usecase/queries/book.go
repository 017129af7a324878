package queries

import (
	"context"

	"bookstore-choreography/internal/domain/book"
	"bookstore-choreography/internal/infra"
	"bookstore-choreography/internal/pkg/errs"
)

var ErrBookNotFound = errs.New("book not found")

type BookReadStore interface {
	FindByID(ctx context.Context, id int64) (*book.Book, error)
	List(ctx context.Context) ([]*book.Book, error)
}

type BookQueries interface {
	GetByID(ctx context.Context, id int64) (*BookView, error)
	List(ctx context.Context) ([]*BookView, error)
}

type bookQueriesImpl struct {
	repo BookReadStore
}

func NewBookQueries(repo BookReadStore) BookQueries {
	return &bookQueriesImpl{repo: repo}
}

func (q *bookQueriesImpl) GetByID(ctx context.Context, id int64) (*BookView, error) {
	b, err := q.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsNotFound(err) {
			return nil, errs.Mark(errs.Wrapf(ErrBookNotFound, "book %d", id), errs.ErrNotFound)
		}
		return nil, err
	}
	return &BookView{ID: b.ID(), Title: b.Title(), Price: b.Price()}, nil
}

func (q *bookQueriesImpl) List(ctx context.Context) ([]*BookView, error) {
	books, err := q.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*BookView, len(books))
	for i, b := range books {
		out[i] = &BookView{ID: b.ID(), Title: b.Title(), Price: b.Price()}
	}
	return out, nil
}
