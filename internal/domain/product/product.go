// Package product defines the catalog entry model and its persistence contract.
package product

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// ValidationError indicates a rejected field on create or update. The request
// is never partially applied when a ValidationError is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Product represents a catalog item available for purchase. Image is the
// stored upload filename; empty when the product has no image.
type Product struct {
	ID        int64
	Name      string
	Price     decimal.Decimal
	Image     string
	CreatedAt time.Time
}

// Repository defines persistence operations for the product catalog.
// List returns products newest first. Update and Delete report ErrNotFound
// when no row matches the ID.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
}
