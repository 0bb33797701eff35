package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/bakeshop/internal/domain/cart"
	"github.com/xenking/bakeshop/internal/domain/checkout"
	"github.com/xenking/bakeshop/internal/domain/product"
	"github.com/xenking/bakeshop/internal/session"
)

type indexView struct {
	baseView
	Products []product.Product
}

type cartView struct {
	baseView
	Items []cart.LineItem
	Total decimal.Decimal
}

type checkoutView struct {
	baseView
	Items []cart.LineItem
	Total decimal.Decimal
	Error string
}

type successView struct {
	baseView
	OrderID       int64
	Total         decimal.Decimal
	PaymentMethod string
}

// Index serves the storefront with all products, newest first.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "index.html", indexView{
		baseView: h.baseView(r),
		Products: products,
	})
}

// AddToCart puts one unit of a product into the session cart and returns to
// the storefront. An unknown product just returns to the storefront.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	sess := session.FromContext(r.Context())
	if sess == nil {
		h.serverError(w, r, errMissingSession)
		return
	}

	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		h.serverError(w, r, err)
		return
	}

	sess.Cart.Add(*p)

	http.Redirect(w, r, "/", http.StatusFound)
}

// Cart shows the session cart contents.
func (h *Handler) Cart(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if sess == nil {
		h.serverError(w, r, errMissingSession)
		return
	}

	h.render(w, r, http.StatusOK, "cart.html", cartView{
		baseView: h.baseView(r),
		Items:    sess.Cart.Items(),
		Total:    sess.Cart.Total(),
	})
}

// RemoveFromCart drops a line item and returns to the cart page. Unknown
// items are a no-op.
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	sess := session.FromContext(r.Context())
	if sess == nil {
		h.serverError(w, r, errMissingSession)
		return
	}
	sess.Cart.Remove(cart.Key(id))

	http.Redirect(w, r, "/cart", http.StatusFound)
}

// UpdateCart sets a line item quantity from a JSON body of the form
// {"product_id": "3", "quantity": 2}. The product ID may arrive as a string
// or a number. A quantity of zero or below removes the item; unknown items
// are a no-op. Responds {"success": true}.
func (h *Handler) UpdateCart(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if sess == nil {
		h.serverError(w, r, errMissingSession)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	key, quantity, err := decodeCartUpdate(body)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	sess.Cart.SetQuantity(key, quantity)

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("success")
	e.Bool(true)
	e.ObjEnd()

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(e.Bytes())
}

// decodeCartUpdate parses the update_cart payload. A missing quantity
// defaults to 1.
func decodeCartUpdate(body []byte) (key string, quantity int, err error) {
	quantity = 1
	d := jx.DecodeBytes(body)
	err = d.Obj(func(d *jx.Decoder, field string) error {
		switch field {
		case "product_id":
			switch d.Next() {
			case jx.String:
				v, err := d.Str()
				key = v
				return err
			case jx.Number:
				v, err := d.Int64()
				key = cart.Key(v)
				return err
			default:
				return errors.New("product_id must be a string or number")
			}
		case "quantity":
			v, err := d.Int()
			quantity = v
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return "", 0, errors.Wrap(err, "decode cart update")
	}
	if key == "" {
		return "", 0, errors.New("product_id is required")
	}
	return key, quantity, nil
}

// CheckoutPage shows the checkout form. An empty cart goes back to the cart
// page instead.
func (h *Handler) CheckoutPage(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if sess == nil {
		h.serverError(w, r, errMissingSession)
		return
	}
	if sess.Cart.Len() == 0 {
		http.Redirect(w, r, "/cart", http.StatusFound)
		return
	}

	h.render(w, r, http.StatusOK, "checkout.html", checkoutView{
		baseView: h.baseView(r),
		Items:    sess.Cart.Items(),
		Total:    sess.Cart.Total(),
	})
}

// Checkout places the order and shows the confirmation page. Missing customer
// fields re-render the form with an inline error and leave the cart intact.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if sess == nil {
		h.serverError(w, r, errMissingSession)
		return
	}

	req := checkout.Request{
		Name:          r.FormValue("name"),
		Email:         r.FormValue("email"),
		PaymentMethod: r.FormValue("payment_method"),
	}

	res, err := h.checkout.Checkout(r.Context(), sess.Cart, req)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			http.Redirect(w, r, "/cart", http.StatusFound)
		case errors.Is(err, checkout.ErrFieldsRequired):
			h.render(w, r, http.StatusOK, "checkout.html", checkoutView{
				baseView: h.baseView(r),
				Items:    sess.Cart.Items(),
				Total:    sess.Cart.Total(),
				Error:    "All fields are required",
			})
		default:
			h.serverError(w, r, err)
		}
		return
	}

	h.render(w, r, http.StatusOK, "success.html", successView{
		baseView:      h.baseView(r),
		OrderID:       res.OrderID,
		Total:         res.Total,
		PaymentMethod: req.PaymentMethod,
	})
}
