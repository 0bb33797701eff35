// Package session provides per-browser sessions backed by an opaque cookie
// token and an in-memory store.
//
// A session carries the shopping cart and the admin login flag. Sessions are
// injected into the request context by the middleware, so handlers never
// touch process-wide state. Fields of a single session are not locked:
// requests from one browser session are effectively serial, and
// last-write-wins is acceptable for a cart.
package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xenking/bakeshop/internal/domain/cart"
)

// CookieName is the name of the session cookie.
const CookieName = "bakeshop_session"

// Session is the per-browser state bag.
type Session struct {
	Token string
	Admin bool
	Cart  *cart.Cart

	expiresAt time.Time
}

// Store keeps sessions in memory, evicting them after a fixed TTL.
type Store struct {
	ttl time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore creates a session store with the given TTL.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
}

// Get returns the live session for a token, extending its lifetime, or nil
// when the token is unknown or expired.
func (s *Store) Get(token string) *Session {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok || now.After(sess.expiresAt) {
		return nil
	}
	sess.expiresAt = now.Add(s.ttl)
	return sess
}

// New creates and registers a fresh session with an empty cart.
func (s *Store) New() *Session {
	sess := &Session{
		Token:     uuid.NewString(),
		Cart:      cart.New(),
		expiresAt: time.Now().Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[sess.Token] = sess
	s.mu.Unlock()

	return sess
}

// Destroy removes a session entirely, dropping the cart and login flag.
func (s *Store) Destroy(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// Len returns the number of live sessions (expired ones included until the
// next cleanup pass).
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// cleanup removes sessions that have expired.
func (s *Store) cleanup(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, sess := range s.sessions {
		if now.After(sess.expiresAt) {
			delete(s.sessions, token)
		}
	}
}

// StartCleanup launches a background goroutine that periodically evicts
// expired sessions. It stops when ctx is cancelled.
func (s *Store) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.cleanup(now)
			}
		}
	}()
}

// sessionKey is the context key for the request's session.
type sessionKey struct{}

// FromContext extracts the session injected by Middleware. It returns nil
// when the middleware did not run.
func FromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionKey{}).(*Session)
	return sess
}

// Middleware resolves the request's session from the cookie, creating a new
// session (and setting the cookie) when none exists, and injects it into the
// request context.
func Middleware(store *Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sess *Session
			if c, err := r.Cookie(CookieName); err == nil {
				sess = store.Get(c.Value)
			}
			if sess == nil {
				sess = store.New()
				http.SetCookie(w, &http.Cookie{
					Name:     CookieName,
					Value:    sess.Token,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), sessionKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClearCookie expires the session cookie on the client.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
