package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/xenking/bakeshop/internal/session"
)

type loginView struct {
	baseView
	Error string
}

// LoginPage serves the admin login form.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login.html", loginView{baseView: h.baseView(r)})
}

// Login checks the submitted credentials against the configured admin pair.
// Both comparisons run in constant time regardless of which field mismatches.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")

	match := subtle.ConstantTimeCompare([]byte(username), []byte(h.creds.Username)) &
		subtle.ConstantTimeCompare([]byte(password), []byte(h.creds.Password))
	if match != 1 {
		h.render(w, r, http.StatusOK, "login.html", loginView{
			baseView: h.baseView(r),
			Error:    "Invalid credentials",
		})
		return
	}

	sess := session.FromContext(r.Context())
	if sess == nil {
		h.serverError(w, r, errMissingSession)
		return
	}
	sess.Admin = true

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// Logout destroys the whole session, cart included, and clears the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess := session.FromContext(r.Context()); sess != nil {
		h.sessions.Destroy(sess.Token)
	}
	session.ClearCookie(w)

	http.Redirect(w, r, "/", http.StatusFound)
}
