package payment

import (
	"time"

	"bookstore-choreography/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errs.New("quantity must be at least 1")
	ErrInvalidAmount   = errs.New("amount must be positive")
	ErrPriceMismatch   = errs.New("Price mismatch detected!")
)

type Payment struct {
	id        int64
	orderID   int64
	bookID    int64
	quantity  int
	amount    decimal.Decimal
	createdAt time.Time
}

func NewPayment(orderID, bookID int64, quantity int, amount decimal.Decimal, now time.Time) (*Payment, error) {
	if quantity < 1 {
		return nil, errs.Mark(ErrInvalidQuantity, errs.ErrInvalidInput)
	}
	if !amount.IsPositive() {
		return nil, errs.Mark(ErrInvalidAmount, errs.ErrInvalidInput)
	}
	return &Payment{
		orderID:   orderID,
		bookID:    bookID,
		quantity:  quantity,
		amount:    amount,
		createdAt: now,
	}, nil
}

func ReconstructPayment(id, orderID, bookID int64, quantity int, amount decimal.Decimal, createdAt time.Time) *Payment {
	return &Payment{
		id:        id,
		orderID:   orderID,
		bookID:    bookID,
		quantity:  quantity,
		amount:    amount,
		createdAt: createdAt,
	}
}

func (p *Payment) ID() int64               { return p.id }
func (p *Payment) OrderID() int64          { return p.orderID }
func (p *Payment) BookID() int64           { return p.bookID }
func (p *Payment) Quantity() int           { return p.quantity }
func (p *Payment) Amount() decimal.Decimal { return p.amount }
func (p *Payment) CreatedAt() time.Time    { return p.createdAt }

func (p *Payment) WithID(id int64) *Payment {
	cp := *p
	cp.id = id
	return &cp
}

// VerifyAgainst checks amount == unitPrice × quantity exactly.
func (p *Payment) VerifyAgainst(unitPrice decimal.Decimal) error {
	expected := unitPrice.Mul(decimal.NewFromInt(int64(p.quantity)))
	if !p.amount.Equal(expected) {
		return errs.Mark(
			errs.Wrapf(ErrPriceMismatch, "expected %s, got %s", expected.StringFixed(2), p.amount.StringFixed(2)),
			errs.ErrPriceMismatch,
		)
	}
	return nil
}
