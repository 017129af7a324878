package postgres

import (
	"context"

	"bookstore-choreography/internal/domain/order"
	"bookstore-choreography/internal/infra"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, book_id, book_title, book_price::text, quantity, status`

type OrderRepository struct {
	db DBTX
}

func NewOrderRepository(db DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO orders (book_id, book_title, book_price, quantity, status)
		 VALUES ($1, $2, $3::numeric, $4, $5)
		 RETURNING id`,
		o.BookID(), o.BookTitle(), o.BookPrice().String(), o.Quantity(), o.Status().String(),
	).Scan(&id)
	if err != nil {
		return 0, mapErr("failed to create order", err)
	}
	return id, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	row := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if err != nil {
		return nil, mapErr("order not found", err)
	}
	return o, nil
}

func (r *OrderRepository) FindByBookID(ctx context.Context, bookID int64) ([]*order.Order, error) {
	rows, err := r.db.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE book_id = $1 ORDER BY id`, bookID)
	if err != nil {
		return nil, mapErr("failed to list orders by book", err)
	}
	return collectOrders(rows)
}

func (r *OrderRepository) List(ctx context.Context) ([]*order.Order, error) {
	rows, err := r.db.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY id`)
	if err != nil {
		return nil, mapErr("failed to list orders", err)
	}
	return collectOrders(rows)
}

func (r *OrderRepository) UpdateStatusIf(ctx context.Context, id int64, from, to order.Status) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET status = $3 WHERE id = $1 AND status = $2`,
		id, from.String(), to.String())
	if err != nil {
		return false, mapErr("failed to update order status", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, mapErr("failed to check order", err)
	}
	if !exists {
		return false, infra.NewRepoErr(infra.KindNotFound, "order not found", nil)
	}
	return false, nil
}

func (r *OrderRepository) UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) error {
	tag, err := r.db.Exec(ctx, `UPDATE orders SET book_price = $2::numeric WHERE id = $1`, id, price.String())
	if err != nil {
		return mapErr("failed to update order price", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindNotFound, "order not found", nil)
	}
	return nil
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var (
		id, bookID int64
		title      string
		price      string
		quantity   int
		status     string
	)
	if err := row.Scan(&id, &bookID, &title, &price, &quantity, &status); err != nil {
		return nil, err
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}
	return order.ReconstructOrder(id, bookID, title, p, quantity, order.Status(status)), nil
}

func collectOrders(rows pgx.Rows) ([]*order.Order, error) {
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*order.Order, error) {
		return scanOrder(row)
	})
	if err != nil {
		return nil, mapErr("failed to scan orders", err)
	}
	return out, nil
}
