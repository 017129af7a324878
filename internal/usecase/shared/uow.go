package shared

import (
	"context"

	"bookstore-choreography/internal/domain/book"
	"bookstore-choreography/internal/domain/order"
	"bookstore-choreography/internal/domain/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type UnitOfWork interface {
	// Within: every repository call inside fn commits or rolls back together
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Tx interface {
	Orders() OrderRepository
	Outbox() OutboxRepository
	Payments() PaymentRepository
	Books() BookRepository
}

// Repositories report missing rows as infra.RepositoryError of KindNotFound.
type OrderRepository interface {
	Create(ctx context.Context, o *order.Order) (int64, error)
	FindByID(ctx context.Context, id int64) (*order.Order, error)
	FindByBookID(ctx context.Context, bookID int64) ([]*order.Order, error)
	List(ctx context.Context) ([]*order.Order, error)
	// UpdateStatusIf reports false when the current status is not from.
	UpdateStatusIf(ctx context.Context, id int64, from, to order.Status) (bool, error)
	UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) error
}

type OutboxRepository interface {
	Add(ctx context.Context, msg *OutboxMessage) error
	// ClaimPending moves up to limit pending rows to dispatching, oldest first.
	ClaimPending(ctx context.Context, limit int) ([]*OutboxMessage, error)
	MarkSent(ctx context.Context, id uuid.UUID, attempts int) error
	MarkFailed(ctx context.Context, id uuid.UUID, attempts int, lastErr string) error
	// ResetInFlight returns rows abandoned in dispatching to pending.
	ResetInFlight(ctx context.Context) (int64, error)
	List(ctx context.Context) ([]*OutboxMessage, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *payment.Payment) (int64, error)
	List(ctx context.Context) ([]*payment.Payment, error)
}

type BookRepository interface {
	Create(ctx context.Context, b *book.Book) (int64, error)
	FindByID(ctx context.Context, id int64) (*book.Book, error)
	List(ctx context.Context) ([]*book.Book, error)
	Update(ctx context.Context, b *book.Book) error
	Count(ctx context.Context) (int64, error)
}
