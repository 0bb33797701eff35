// Package order defines the persisted order record.
package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Order is an immutable record of a completed checkout. Items is a flattened
// human-readable description ("Croissant x2, Baguette x1") rather than a
// structured reference, so later catalog edits never affect historical orders.
type Order struct {
	ID            int64
	Total         decimal.Decimal
	PaymentMethod string
	Items         string
	CustomerName  string
	CustomerEmail string
	CreatedAt     time.Time
}

// Repository defines persistence operations for orders. Orders are never
// updated or deleted once created.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	List(ctx context.Context) ([]Order, error)
}
