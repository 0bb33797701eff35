package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/bakeshop/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"money": func(d decimal.Decimal) string {
		return d.StringFixed(2)
	},
}

// pageNames lists the content templates, each rendered inside layout.html.
var pageNames = []string{
	"index.html",
	"login.html",
	"dashboard.html",
	"add_product.html",
	"edit_product.html",
	"cart.html",
	"checkout.html",
	"success.html",
	"orders.html",
	"404.html",
	"500.html",
}

func parseTemplates() map[string]*template.Template {
	templates := make(map[string]*template.Template, len(pageNames))
	for _, page := range pageNames {
		templates[page] = template.Must(template.New(page).Funcs(templateFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+page))
	}
	return templates
}

// baseView is embedded in every page view and feeds the shared layout.
type baseView struct {
	LoggedIn bool
	CartLen  int
}

func (h *Handler) baseView(r *http.Request) baseView {
	sess := session.FromContext(r.Context())
	if sess == nil {
		return baseView{}
	}
	return baseView{
		LoggedIn: sess.Admin,
		CartLen:  sess.Cart.Len(),
	}
}

// render executes a page template into a buffer before writing, so a template
// failure never sends a truncated page.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	tmpl, ok := h.templates[page]
	if !ok {
		zctx.From(r.Context()).Error("unknown template", zap.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		zctx.From(r.Context()).Error("render template",
			zap.String("page", page), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type errorView struct {
	baseView
}

// NotFound serves the custom 404 page. It backs the catch-all route.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "404.html", errorView{h.baseView(r)})
}

// serverError logs the failure and serves the custom 500 page.
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("request failed",
		zap.String("path", r.URL.Path), zap.Error(err))
	h.render(w, r, http.StatusInternalServerError, "500.html", errorView{h.baseView(r)})
}
