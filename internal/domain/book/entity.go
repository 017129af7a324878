package book

import (
	"strings"

	"bookstore-choreography/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidTitle = errs.New("title must not be empty")
	ErrInvalidPrice = errs.New("price must be positive")
)

type Book struct {
	id    int64
	title string
	price decimal.Decimal
}

func NewBook(title string, price decimal.Decimal) (*Book, error) {
	b := &Book{}
	if err := b.Revise(title, price); err != nil {
		return nil, err
	}
	return b, nil
}

func ReconstructBook(id int64, title string, price decimal.Decimal) *Book {
	return &Book{id: id, title: title, price: price}
}

func (b *Book) ID() int64              { return b.id }
func (b *Book) Title() string          { return b.title }
func (b *Book) Price() decimal.Decimal { return b.price }

// Revise replaces title and price together; the book is left untouched on error.
func (b *Book) Revise(title string, price decimal.Decimal) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return errs.Mark(ErrInvalidTitle, errs.ErrInvalidInput)
	}
	if !price.IsPositive() {
		return errs.Mark(ErrInvalidPrice, errs.ErrInvalidInput)
	}
	b.title = title
	b.price = price
	return nil
}
