package shared

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookSnapshot is the catalog's view of a book at lookup time.
type BookSnapshot struct {
	ID    int64           `json:"id"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
}

// PaymentRequest is what the order service asks the payment service to settle.
type PaymentRequest struct {
	OrderID  int64           `json:"orderId"`
	BookID   int64           `json:"bookId"`
	Quantity int             `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
}

type OutboxStatus string

const (
	OutboxPending     OutboxStatus = "pending"
	OutboxDispatching OutboxStatus = "dispatching"
	OutboxSent        OutboxStatus = "sent"
	OutboxFailed      OutboxStatus = "failed"
)

const TopicPaymentRequest = "payment-request"

type OutboxMessage struct {
	ID        uuid.UUID
	Topic     string
	Payload   []byte
	Status    OutboxStatus
	Attempts  int
	LastError string
	CreatedAt time.Time
}
