package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/bakeshop/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders (total, payment_method, items, customer_name, customer_email)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`

	listOrdersSQL = `SELECT id, total, payment_method, items, customer_name, customer_email, created_at
		FROM orders ORDER BY created_at DESC, id DESC`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order row in a single statement and fills in the
// assigned ID and creation timestamp.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	err := r.pool.QueryRow(ctx, createOrderSQL,
		o.Total, o.PaymentMethod, o.Items, o.CustomerName, o.CustomerEmail,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating order: %w", err)
	}
	return nil
}

// List returns all orders, most recent first.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o     order.Order
		total decimal.Decimal
	)
	err := row.Scan(&o.ID, &total, &o.PaymentMethod, &o.Items, &o.CustomerName, &o.CustomerEmail, &o.CreatedAt)
	o.Total = total
	return o, err
}
