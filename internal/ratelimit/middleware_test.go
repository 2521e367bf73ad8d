package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signup/internal/platform/metrics"
	"signup/pkg/testutil"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (*Result, error) {
	return nil, errors.New("redis: connection refused")
}

// keyRecorder remembers the keys it was asked about.
type keyRecorder struct {
	keys []string
}

func (k *keyRecorder) Allow(_ context.Context, key string, limit int, window time.Duration) (*Result, error) {
	k.keys = append(k.keys, key)
	return &Result{Allowed: true, Limit: limit, Remaining: limit - 1, ResetAt: time.Now().Add(window)}, nil
}

func serve(h http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/1.0/users", nil)
	req = testutil.WithClientIP(req, ip)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddlewareRejectsOverLimit(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	limiter := NewLimiter(NewInMemoryStore(), 2, time.Minute)
	h := NewMiddleware(limiter, discard, WithMetrics(m)).RateLimit(okHandler())

	first := serve(h, "203.0.113.7")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, first.Header().Get("X-RateLimit-Reset"))

	assert.Equal(t, http.StatusOK, serve(h, "203.0.113.7").Code)

	denied := serve(h, "203.0.113.7")
	assert.Equal(t, http.StatusTooManyRequests, denied.Code)
	assert.NotEmpty(t, denied.Header().Get("Retry-After"))
	var body map[string]string
	require.NoError(t, json.Unmarshal(denied.Body.Bytes(), &body))
	assert.Equal(t, "rate_limited", body["error"])
	assert.NotEmpty(t, body["error_description"])
	assert.Equal(t, 1.0, promtest.ToFloat64(m.RateLimitedRequests))

	assert.Equal(t, http.StatusOK, serve(h, "198.51.100.4").Code, "other clients keep their own budget")
}

func TestMiddlewareFailsOpen(t *testing.T) {
	h := NewMiddleware(NewLimiter(failingStore{}, 1, time.Minute), discard).RateLimit(okHandler())

	w := serve(h, "203.0.113.7")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}

func TestMiddlewareDisabled(t *testing.T) {
	store := &keyRecorder{}
	h := NewMiddleware(NewLimiter(store, 1, time.Minute), discard, WithDisabled(true)).RateLimit(okHandler())

	for range 3 {
		assert.Equal(t, http.StatusOK, serve(h, "203.0.113.7").Code)
	}
	assert.Empty(t, store.keys)
}

func TestLimiterSanitizesKey(t *testing.T) {
	store := &keyRecorder{}
	limiter := NewLimiter(store, 10, time.Minute)

	_, err := limiter.CheckIP(context.Background(), "2001:db8::1")
	require.NoError(t, err)
	_, err = limiter.CheckIP(context.Background(), "x:ratelimit:other")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"ratelimit:signup:ip:2001_db8__1",
		"ratelimit:signup:ip:x_ratelimit_other",
	}, store.keys)
}

func TestLimiterWrapsStoreError(t *testing.T) {
	_, err := NewLimiter(failingStore{}, 1, time.Minute).CheckIP(context.Background(), "203.0.113.7")
	assert.ErrorContains(t, err, "check ip rate limit")
}

func TestRetryAfter(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		resetAt time.Time
		want    int
	}{
		{"rounds up", now.Add(1500 * time.Millisecond), 2},
		{"whole seconds", now.Add(30 * time.Second), 30},
		{"already reset", now.Add(-time.Second), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Result{ResetAt: tt.resetAt}
			assert.Equal(t, tt.want, r.RetryAfter(now))
		})
	}
}
