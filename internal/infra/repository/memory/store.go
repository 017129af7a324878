// Package memory is a process-local store with the same transactional
// contract as the Postgres store: Within works on a copy that replaces the
// committed state only when fn succeeds.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"bookstore-choreography/internal/pkg/clock"
	"bookstore-choreography/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type orderRow struct {
	bookID    int64
	bookTitle string
	bookPrice decimal.Decimal
	quantity  int
	status    string
}

type paymentRow struct {
	orderID   int64
	bookID    int64
	quantity  int
	amount    decimal.Decimal
	createdAt time.Time
}

type bookRow struct {
	title string
	price decimal.Decimal
}

type tables struct {
	orders     map[int64]orderRow
	orderSeq   int64
	payments   map[int64]paymentRow
	paymentSeq int64
	books      map[int64]bookRow
	bookSeq    int64
	outbox     map[uuid.UUID]shared.OutboxMessage
	// insertion order of outbox ids
	outboxSeq []uuid.UUID
}

func newTables() *tables {
	return &tables{
		orders:   map[int64]orderRow{},
		payments: map[int64]paymentRow{},
		books:    map[int64]bookRow{},
		outbox:   map[uuid.UUID]shared.OutboxMessage{},
	}
}

func (t *tables) clone() *tables {
	return &tables{
		orders:     maps.Clone(t.orders),
		orderSeq:   t.orderSeq,
		payments:   maps.Clone(t.payments),
		paymentSeq: t.paymentSeq,
		books:      maps.Clone(t.books),
		bookSeq:    t.bookSeq,
		outbox:     maps.Clone(t.outbox),
		outboxSeq:  slices.Clone(t.outboxSeq),
	}
}

type Store struct {
	mu    sync.RWMutex
	data  *tables
	clock clock.Clock
}

func NewStore(clk clock.Clock) *Store {
	return &Store{data: newTables(), clock: clk}
}

// Within serializes writers; fn must not call back into the Store's readers.
func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(ctx, &memTx{t: work, clock: s.clock}); err != nil {
		return err
	}
	s.data = work
	return nil
}

func (s *Store) view() *tables {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// committed tables are replaced, never mutated, so the pointer is a stable snapshot
	return s.data
}

func (s *Store) OrderReader() *OrderRepository {
	return &OrderRepository{t: s.view}
}

func (s *Store) PaymentReader() *PaymentRepository {
	return &PaymentRepository{t: s.view}
}

func (s *Store) BookReader() *BookRepository {
	return &BookRepository{t: s.view}
}

func (s *Store) OutboxReader() *OutboxRepository {
	return &OutboxRepository{t: s.view, clock: s.clock}
}

type memTx struct {
	t     *tables
	clock clock.Clock
}

func (tx *memTx) snapshot() *tables { return tx.t }

func (tx *memTx) Orders() shared.OrderRepository {
	return &OrderRepository{t: tx.snapshot}
}

func (tx *memTx) Outbox() shared.OutboxRepository {
	return &OutboxRepository{t: tx.snapshot, clock: tx.clock}
}

func (tx *memTx) Payments() shared.PaymentRepository {
	return &PaymentRepository{t: tx.snapshot}
}

func (tx *memTx) Books() shared.BookRepository {
	return &BookRepository{t: tx.snapshot}
}
