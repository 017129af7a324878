package postgres

import (
	"context"

	"bookstore-choreography/internal/domain/book"
	"bookstore-choreography/internal/infra"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type BookRepository struct {
	db DBTX
}

func NewBookRepository(db DBTX) *BookRepository {
	return &BookRepository{db: db}
}

func (r *BookRepository) Create(ctx context.Context, b *book.Book) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO books (title, price) VALUES ($1, $2::numeric) RETURNING id`,
		b.Title(), b.Price().String(),
	).Scan(&id)
	if err != nil {
		return 0, mapErr("failed to create book", err)
	}
	return id, nil
}

func (r *BookRepository) FindByID(ctx context.Context, id int64) (*book.Book, error) {
	b, err := scanBook(r.db.QueryRow(ctx, `SELECT id, title, price::text FROM books WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("book not found", err)
	}
	return b, nil
}

func (r *BookRepository) List(ctx context.Context) ([]*book.Book, error) {
	rows, err := r.db.Query(ctx, `SELECT id, title, price::text FROM books ORDER BY id`)
	if err != nil {
		return nil, mapErr("failed to list books", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*book.Book, error) {
		return scanBook(row)
	})
	if err != nil {
		return nil, mapErr("failed to scan books", err)
	}
	return out, nil
}

func (r *BookRepository) Update(ctx context.Context, b *book.Book) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE books SET title = $2, price = $3::numeric WHERE id = $1`,
		b.ID(), b.Title(), b.Price().String())
	if err != nil {
		return mapErr("failed to update book", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindNotFound, "book not found", nil)
	}
	return nil
}

func (r *BookRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM books`).Scan(&n); err != nil {
		return 0, mapErr("failed to count books", err)
	}
	return n, nil
}

func scanBook(row pgx.Row) (*book.Book, error) {
	var (
		id    int64
		title string
		price string
	)
	if err := row.Scan(&id, &title, &price); err != nil {
		return nil, err
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}
	return book.ReconstructBook(id, title, p), nil
}
