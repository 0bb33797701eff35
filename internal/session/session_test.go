package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_NewAndGet(t *testing.T) {
	store := NewStore(time.Hour)

	sess := store.New()
	require.NotEmpty(t, sess.Token)
	require.NotNil(t, sess.Cart)

	got := store.Get(sess.Token)
	assert.Same(t, sess, got)
}

func TestStore_GetUnknownToken(t *testing.T) {
	store := NewStore(time.Hour)
	assert.Nil(t, store.Get("nope"))
}

func TestStore_Expiry(t *testing.T) {
	store := NewStore(-time.Second)

	sess := store.New()
	assert.Nil(t, store.Get(sess.Token))
}

func TestStore_Destroy(t *testing.T) {
	store := NewStore(time.Hour)

	sess := store.New()
	sess.Admin = true
	store.Destroy(sess.Token)

	assert.Nil(t, store.Get(sess.Token))
	assert.Equal(t, 0, store.Len())
}

func TestStore_Cleanup(t *testing.T) {
	store := NewStore(time.Minute)
	live := store.New()
	expired := store.New()
	expired.expiresAt = time.Now().Add(-time.Minute)

	store.cleanup(time.Now())

	assert.Equal(t, 1, store.Len())
	assert.NotNil(t, store.Get(live.Token))
}

func TestMiddleware_CreatesSession(t *testing.T) {
	store := NewStore(time.Hour)

	var seen *Session
	h := Middleware(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotNil(t, seen)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, seen.Token, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestMiddleware_ReusesSession(t *testing.T) {
	store := NewStore(time.Hour)
	sess := store.New()
	sess.Admin = true

	var seen *Session
	h := Middleware(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: sess.Token})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Same(t, sess, seen)
	assert.Empty(t, rec.Result().Cookies(), "no new cookie for a live session")
}

func TestMiddleware_ReplacesExpiredSession(t *testing.T) {
	store := NewStore(time.Hour)
	stale := store.New()
	stale.expiresAt = time.Now().Add(-time.Hour)

	var seen *Session
	h := Middleware(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: stale.Token})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.NotNil(t, seen)
	assert.NotEqual(t, stale.Token, seen.Token)
}
