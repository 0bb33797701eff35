// Package checkout converts a session cart into a persisted order.
package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/bakeshop/internal/domain/cart"
	"github.com/xenking/bakeshop/internal/domain/order"
)

// Sentinel errors for checkout validation.
var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrFieldsRequired = errors.New("all fields are required")
)

// Request holds the customer-supplied checkout details. Email and payment
// method are accepted as free text.
type Request struct {
	Name          string
	Email         string
	PaymentMethod string
}

// Result holds the outcome of a successful checkout for display.
type Result struct {
	OrderID int64
	Total   decimal.Decimal
}

// Service persists orders built from carts.
type Service struct {
	orders order.Repository
}

// NewService creates a checkout Service.
func NewService(orders order.Repository) *Service {
	return &Service{orders: orders}
}

// Checkout validates the cart and customer details, writes one order row,
// and clears the cart. The cart is only cleared after the order row is
// written, and the write is a single statement, so no partial order state
// can remain on failure.
func (s *Service) Checkout(ctx context.Context, c *cart.Cart, req Request) (*Result, error) {
	if c.Len() == 0 {
		return nil, ErrEmptyCart
	}
	if strings.TrimSpace(req.Name) == "" ||
		strings.TrimSpace(req.Email) == "" ||
		strings.TrimSpace(req.PaymentMethod) == "" {
		return nil, ErrFieldsRequired
	}

	items := c.Items()
	parts := make([]string, len(items))
	for i, li := range items {
		parts[i] = fmt.Sprintf("%s x%d", li.Name, li.Quantity)
	}

	o := &order.Order{
		Total:         c.Total(),
		PaymentMethod: req.PaymentMethod,
		Items:         strings.Join(parts, ", "),
		CustomerName:  req.Name,
		CustomerEmail: req.Email,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	c.Clear()

	return &Result{
		OrderID: o.ID,
		Total:   o.Total,
	}, nil
}
