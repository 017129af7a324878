package postgres

import (
	"context"
	"time"

	"bookstore-choreography/internal/domain/payment"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO payments (order_id, book_id, quantity, amount, created_at)
		 VALUES ($1, $2, $3, $4::numeric, $5)
		 RETURNING id`,
		p.OrderID(), p.BookID(), p.Quantity(), p.Amount().String(), p.CreatedAt(),
	).Scan(&id)
	if err != nil {
		return 0, mapErr("failed to create payment", err)
	}
	return id, nil
}

func (r *PaymentRepository) List(ctx context.Context) ([]*payment.Payment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, order_id, book_id, quantity, amount::text, created_at FROM payments ORDER BY id`)
	if err != nil {
		return nil, mapErr("failed to list payments", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*payment.Payment, error) {
		var (
			id, orderID, bookID int64
			quantity            int
			amount              string
			createdAt           time.Time
		)
		if err := row.Scan(&id, &orderID, &bookID, &quantity, &amount, &createdAt); err != nil {
			return nil, err
		}
		a, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, err
		}
		return payment.ReconstructPayment(id, orderID, bookID, quantity, a, createdAt.UTC()), nil
	})
	if err != nil {
		return nil, mapErr("failed to scan payments", err)
	}
	return out, nil
}
