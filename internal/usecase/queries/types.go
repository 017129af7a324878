package queries

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderView struct {
	ID        int64
	BookID    int64
	BookTitle string
	BookPrice decimal.Decimal
	Quantity  int
	Amount    decimal.Decimal
	Status    string
}

type PaymentView struct {
	ID        int64
	OrderID   int64
	BookID    int64
	Quantity  int
	Amount    decimal.Decimal
	CreatedAt time.Time
}

type BookView struct {
	ID    int64
	Title string
	Price decimal.Decimal
}

type FaultView struct {
	MessageID  string
	Kind       string
	Queue      string
	Payload    []byte
	Exceptions []string
	Attempts   int
	Timestamp  time.Time
}
