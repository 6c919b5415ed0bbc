package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func newRateLimitedHandler(t *testing.T, limit int, window time.Duration) (http.Handler, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	rateLimit := RateLimitMiddleware(client, RateLimitConfig{
		RequestsPerWindow: limit,
		Window:            window,
		KeyPrefix:         "ratelimit:test",
	}, zap.NewNop())

	handler := rateLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	return handler, mr
}

func doRequest(handler http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_AllowsWithinLimit(t *testing.T) {
	handler, _ := newRateLimitedHandler(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		rec := doRequest(handler, "10.0.0.1:1234")
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}
}

func TestRateLimit_BlocksOverLimit(t *testing.T) {
	handler, _ := newRateLimitedHandler(t, 2, time.Minute)

	doRequest(handler, "10.0.0.1:1234")
	doRequest(handler, "10.0.0.1:1234")
	rec := doRequest(handler, "10.0.0.1:1234")

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected a Retry-After header on a limited response")
	}
}

func TestRateLimit_ClientsAreIndependent(t *testing.T) {
	handler, _ := newRateLimitedHandler(t, 1, time.Minute)

	doRequest(handler, "10.0.0.1:1234")
	rec := doRequest(handler, "10.0.0.2:1234")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected second client unaffected, got %d", rec.Code)
	}
}

func TestRateLimit_WindowExpiryResetsCounter(t *testing.T) {
	handler, mr := newRateLimitedHandler(t, 1, time.Minute)

	doRequest(handler, "10.0.0.1:1234")
	if rec := doRequest(handler, "10.0.0.1:1234"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 before window expiry, got %d", rec.Code)
	}

	mr.FastForward(time.Minute + time.Second)

	if rec := doRequest(handler, "10.0.0.1:1234"); rec.Code != http.StatusOK {
		t.Fatalf("expected counter reset after window expiry, got %d", rec.Code)
	}
}

func TestRateLimit_FailsOpenOnRedisError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	rateLimit := RateLimitMiddleware(client, RateLimitConfig{
		RequestsPerWindow: 1,
		Window:            time.Minute,
		KeyPrefix:         "ratelimit:test",
	}, zap.NewNop())

	handler := rateLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	mr.Close()

	rec := doRequest(handler, "10.0.0.1:1234")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected fail-open when redis is down, got %d", rec.Code)
	}
}
