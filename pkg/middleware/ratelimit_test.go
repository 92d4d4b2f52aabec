package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/logger"
)

func TestRateLimit_PerClient(t *testing.T) {
	store := newLimiterStore(1, 2, time.Minute)
	fixed := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	h := rateLimit(store, logger.Discard())(okHandler())

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", nil)
		req.RemoteAddr = ip + ":5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2"))
}

func TestRateLimit_KeysAuthenticatedUsers(t *testing.T) {
	store := newLimiterStore(1, 1, time.Minute)
	fixed := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }
	h := rateLimit(store, logger.Discard())(okHandler())

	send := func(user string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = req.WithContext(WithClaims(req.Context(), &Claims{UserID: user, Role: RoleCustomer}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("u1"))
	assert.Equal(t, http.StatusTooManyRequests, send("u1"))
	assert.Equal(t, http.StatusOK, send("u2"))
}

func TestLimiterStore_EvictsIdleClients(t *testing.T) {
	store := newLimiterStore(1, 1, time.Minute)
	now := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.allow("a")
	store.allow("b")
	assert.Equal(t, 2, store.size())

	now = now.Add(2 * time.Minute)
	store.allow("c")
	assert.Equal(t, 1, store.size())
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", clientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "203.0.113.5", clientIP(req))
}
