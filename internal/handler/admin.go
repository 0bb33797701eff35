package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"

	"github.com/xenking/bakeshop/internal/domain/catalog"
	"github.com/xenking/bakeshop/internal/domain/order"
	"github.com/xenking/bakeshop/internal/domain/product"
)

// maxFormMemory bounds the in-memory part of multipart parsing; larger
// uploads spill to temp files. The total body size is capped by middleware.
const maxFormMemory = 4 << 20

type dashboardView struct {
	baseView
	Products []product.Product
}

type productFormView struct {
	baseView
	Error   string
	Product *product.Product
}

type ordersView struct {
	baseView
	Orders []order.Order
}

// Dashboard lists all products for the admin, newest first.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "dashboard.html", dashboardView{
		baseView: h.baseView(r),
		Products: products,
	})
}

// AddProductPage serves the empty product form.
func (h *Handler) AddProductPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "add_product.html", productFormView{baseView: h.baseView(r)})
}

// AddProduct creates a product from the submitted form. Validation failures
// re-render the form with an inline error and persist nothing.
func (h *Handler) AddProduct(w http.ResponseWriter, r *http.Request) {
	in, cleanup, ok := h.productInput(w, r)
	if !ok {
		return
	}
	defer cleanup()

	if _, err := h.catalog.Create(r.Context(), in); err != nil {
		if msg, ok := formError(err); ok {
			h.render(w, r, http.StatusOK, "add_product.html", productFormView{
				baseView: h.baseView(r),
				Error:    msg,
			})
			return
		}
		h.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// EditProductPage serves the product form prefilled with the current values.
// An unknown product redirects back to the dashboard.
func (h *Handler) EditProductPage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}
		h.serverError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "edit_product.html", productFormView{
		baseView: h.baseView(r),
		Product:  p,
	})
}

// EditProduct updates a product from the submitted form. An unknown product
// redirects back to the dashboard; validation failures re-render the form.
func (h *Handler) EditProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	in, cleanup, formOK := h.productInput(w, r)
	if !formOK {
		return
	}
	defer cleanup()

	if err := h.catalog.Update(r.Context(), id, in); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}
		if msg, ok := formError(err); ok {
			p, getErr := h.products.GetByID(r.Context(), id)
			if getErr != nil {
				http.Redirect(w, r, "/dashboard", http.StatusFound)
				return
			}
			h.render(w, r, http.StatusOK, "edit_product.html", productFormView{
				baseView: h.baseView(r),
				Error:    msg,
				Product:  p,
			})
			return
		}
		h.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// DeleteProduct removes a product and its image. An unknown product is not an
// error; the admin lands back on the dashboard either way.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	if err := h.catalog.Delete(r.Context(), id); err != nil && !errors.Is(err, product.ErrNotFound) {
		h.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// Orders lists all persisted orders, newest first.
func (h *Handler) Orders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "orders.html", ordersView{
		baseView: h.baseView(r),
		Orders:   orders,
	})
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// productInput extracts the product form fields and the optional image
// upload. It writes the response itself on oversized or malformed bodies and
// returns ok=false. cleanup closes the upload handle when one was opened.
func (h *Handler) productInput(w http.ResponseWriter, r *http.Request) (in catalog.Input, cleanup func(), ok bool) {
	cleanup = func() {}

	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, "Uploaded file is too large", http.StatusRequestEntityTooLarge)
			return in, cleanup, false
		}
		http.Error(w, "Malformed form data", http.StatusBadRequest)
		return in, cleanup, false
	}

	in.Name = r.FormValue("name")
	in.Price = r.FormValue("price")

	file, header, err := r.FormFile("image")
	if err == nil && header.Filename != "" {
		in.Image = &catalog.Upload{Filename: header.Filename, Content: file}
		cleanup = func() { _ = file.Close() }
	}

	return in, cleanup, true
}

// formError maps domain validation failures to the messages shown inline on
// the product form. Anything else is a server error.
func formError(err error) (string, bool) {
	var ve *product.ValidationError
	if errors.As(err, &ve) {
		switch {
		case ve.Reason == "must not be empty":
			return "Name and price are required", true
		case ve.Reason == "must not be negative":
			return "Price must not be negative", true
		default:
			return "Price must be a number", true
		}
	}

	var fe *catalog.InvalidFileTypeError
	if errors.As(err, &fe) {
		return "Invalid file type. Allowed: png, jpg, jpeg, gif", true
	}

	return "", false
}
