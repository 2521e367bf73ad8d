package ratelimit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"signup/internal/platform/metrics"
	dErrors "signup/pkg/domain-errors"
	"signup/pkg/platform/httputil"
	"signup/pkg/requestcontext"
)

// IPLimiter is the check the middleware runs per request.
type IPLimiter interface {
	CheckIP(ctx context.Context, ip string) (*Result, error)
}

type Middleware struct {
	limiter  IPLimiter
	logger   *slog.Logger
	metrics  *metrics.Metrics
	disabled bool
	now      func() time.Time
}

type Option func(*Middleware)

// WithDisabled turns the middleware into a pass-through.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func WithMetrics(metrics *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = metrics
	}
}

func NewMiddleware(limiter IPLimiter, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{limiter: limiter, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimit rejects requests over the per-IP limit with 429. It needs the
// client IP on the context, so mount it after the client metadata middleware.
// Limiter failures let the request through.
func (m *Middleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		ip := requestcontext.ClientIP(ctx)
		result, err := m.limiter.CheckIP(ctx, ip)
		if err != nil {
			m.logger.ErrorContext(ctx, "failed to check IP rate limit",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
			next.ServeHTTP(w, r)
			return
		}

		addRateLimitHeaders(w, result)
		if !result.Allowed {
			m.logger.WarnContext(ctx, "rate limit exceeded",
				"request_id", requestcontext.RequestID(ctx),
				"limit", result.Limit,
			)
			if m.metrics != nil {
				m.metrics.IncrementRateLimited()
			}
			w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter(m.now())))
			httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "too many requests, try again later"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func addRateLimitHeaders(w http.ResponseWriter, result *Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
