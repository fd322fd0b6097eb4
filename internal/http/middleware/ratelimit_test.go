package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func byHeader(r *http.Request) string {
	return r.Header.Get("X-Client")
}

func TestRateLimiter_RejectsOverBurst(t *testing.T) {
	rl := NewRateLimiter(0.001, 2, byHeader)
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)

	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
		req.Header.Set("X-Client", "a")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Other clients have their own bucket.
	req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
	req.Header.Set("X-Client", "b")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_Cleanup(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	rl := NewRateLimiter(1, 1, byHeader)
	rl.now = func() time.Time { return now }

	rl.limiter("old")

	now = now.Add(10 * time.Minute)
	rl.limiter("fresh")

	assert.Equal(t, 1, rl.Cleanup(5*time.Minute))
	assert.Len(t, rl.visitors, 1)
	assert.Contains(t, rl.visitors, "fresh")
}

func TestRateLimiter_ClientIPIgnoresCookiesAndPorts(t *testing.T) {
	rl := NewRateLimiter(0.001, 1, ClientIP)
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	allowed := 0

	for i := range 100 {
		req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
		req.RemoteAddr = fmt.Sprintf("203.0.113.7:%d", 40000+i)
		req.AddCookie(&http.Cookie{Name: "sessionId", Value: fmt.Sprintf("s-%d", i)})

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code == http.StatusOK {
			allowed++
		}
	}

	assert.Equal(t, 1, allowed)
	assert.Len(t, rl.visitors, 1)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	req.RemoteAddr = "[2001:db8::1]:8080"
	assert.Equal(t, "2001:db8::1", ClientIP(req))

	req.RemoteAddr = "198.51.100.4"
	assert.Equal(t, "198.51.100.4", ClientIP(req))
}
