// Package handler implements the HTML transport layer: public storefront
// pages, the admin area, and the session cart endpoints.
package handler

import (
	"html/template"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/xenking/bakeshop/internal/domain/catalog"
	"github.com/xenking/bakeshop/internal/domain/checkout"
	"github.com/xenking/bakeshop/internal/domain/order"
	"github.com/xenking/bakeshop/internal/domain/product"
	"github.com/xenking/bakeshop/internal/session"
)

// errMissingSession indicates a route was mounted without the session
// middleware in front of it.
var errMissingSession = errors.New("session middleware did not run")

// Credentials is the shared admin login pair.
type Credentials struct {
	Username string
	Password string
}

// Config carries the handler dependencies.
type Config struct {
	Catalog   *catalog.Service
	Checkout  *checkout.Service
	Products  product.Repository
	Orders    order.Repository
	Sessions  *session.Store
	Admin     Credentials
	UploadDir string
}

// Handler serves all storefront and admin routes.
type Handler struct {
	catalog   *catalog.Service
	checkout  *checkout.Service
	products  product.Repository
	orders    order.Repository
	sessions  *session.Store
	creds     Credentials
	uploadDir string
	templates map[string]*template.Template
}

// New creates a Handler with parsed templates.
func New(cfg Config) *Handler {
	return &Handler{
		catalog:   cfg.Catalog,
		checkout:  cfg.Checkout,
		products:  cfg.Products,
		orders:    cfg.Orders,
		sessions:  cfg.Sessions,
		creds:     cfg.Admin,
		uploadDir: cfg.UploadDir,
		templates: parseTemplates(),
	}
}

// Routes builds the route table. The catch-all pattern serves the custom 404
// page for any path no other route claims.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("GET /login", h.LoginPage)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("GET /logout", h.Logout)

	mux.Handle("GET /dashboard", h.adminOnly(h.Dashboard))
	mux.Handle("GET /add_product", h.adminOnly(h.AddProductPage))
	mux.Handle("POST /add_product", h.adminOnly(h.AddProduct))
	mux.Handle("GET /edit_product/{id}", h.adminOnly(h.EditProductPage))
	mux.Handle("POST /edit_product/{id}", h.adminOnly(h.EditProduct))
	mux.Handle("POST /delete_product/{id}", h.adminOnly(h.DeleteProduct))
	mux.Handle("GET /orders", h.adminOnly(h.Orders))

	mux.HandleFunc("GET /add_to_cart/{id}", h.AddToCart)
	mux.HandleFunc("GET /cart", h.Cart)
	mux.HandleFunc("GET /remove_from_cart/{id}", h.RemoveFromCart)
	mux.HandleFunc("POST /update_cart", h.UpdateCart)
	mux.HandleFunc("GET /checkout", h.CheckoutPage)
	mux.HandleFunc("POST /checkout", h.Checkout)

	mux.Handle("GET /uploads/",
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(h.uploadDir))))

	mux.HandleFunc("/", h.NotFound)

	return mux
}

// adminOnly redirects to the login page unless the session is logged in.
func (h *Handler) adminOnly(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromContext(r.Context())
		if sess == nil || !sess.Admin {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next(w, r)
	})
}
