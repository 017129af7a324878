package order

import (
	"bookstore-choreography/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errs.New("quantity must be at least 1")
	ErrInvalidPrice    = errs.New("book price must be positive")
)

type Status string

const (
	StatusPending Status = "Pending"
	StatusPaid    Status = "Paid"
)

func (s Status) String() string { return string(s) }

// Order snapshots the book title and price at creation. The amount is always
// derived from the current price and quantity and is never stored.
type Order struct {
	id        int64
	bookID    int64
	bookTitle string
	bookPrice decimal.Decimal
	quantity  int
	status    Status
}

func NewOrder(bookID int64, bookTitle string, bookPrice decimal.Decimal, quantity int) (*Order, error) {
	if quantity < 1 {
		return nil, errs.Mark(ErrInvalidQuantity, errs.ErrInvalidInput)
	}
	if !bookPrice.IsPositive() {
		return nil, errs.Mark(ErrInvalidPrice, errs.ErrInvalidInput)
	}
	return &Order{
		bookID:    bookID,
		bookTitle: bookTitle,
		bookPrice: bookPrice,
		quantity:  quantity,
		status:    StatusPending,
	}, nil
}

func ReconstructOrder(id, bookID int64, bookTitle string, bookPrice decimal.Decimal, quantity int, status Status) *Order {
	return &Order{
		id:        id,
		bookID:    bookID,
		bookTitle: bookTitle,
		bookPrice: bookPrice,
		quantity:  quantity,
		status:    status,
	}
}

func (o *Order) ID() int64                  { return o.id }
func (o *Order) BookID() int64              { return o.bookID }
func (o *Order) BookTitle() string          { return o.bookTitle }
func (o *Order) BookPrice() decimal.Decimal { return o.bookPrice }
func (o *Order) Quantity() int              { return o.quantity }
func (o *Order) Status() Status             { return o.status }

func (o *Order) Amount() decimal.Decimal {
	return o.bookPrice.Mul(decimal.NewFromInt(int64(o.quantity)))
}

// WithID returns a copy carrying the store-assigned id.
func (o *Order) WithID(id int64) *Order {
	cp := *o
	cp.id = id
	return &cp
}

// MarkPaid moves Pending to Paid. It reports false when the order was already Paid.
func (o *Order) MarkPaid() bool {
	if o.status == StatusPaid {
		return false
	}
	o.status = StatusPaid
	return true
}

// Reprice reports whether the price actually changed.
func (o *Order) Reprice(newPrice decimal.Decimal) bool {
	if o.bookPrice.Equal(newPrice) {
		return false
	}
	o.bookPrice = newPrice
	return true
}
