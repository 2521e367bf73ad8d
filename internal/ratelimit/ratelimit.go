// Package ratelimit throttles signup attempts per client IP with a sliding
// window. Counters live in memory for a single instance or in Redis when
// several instances share the limit.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
)

// Result describes one limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is the whole number of seconds until a slot frees up, at least 1.
func (r *Result) RetryAfter(now time.Time) int {
	seconds := int(math.Ceil(r.ResetAt.Sub(now).Seconds()))
	if seconds < 1 {
		return 1
	}
	return seconds
}

// Store counts requests for a key within a sliding window. Allow records the
// request only when it is within the limit.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

// Limiter applies one limit and window to every client IP.
type Limiter struct {
	store  Store
	limit  int
	window time.Duration
	prefix string
}

func NewLimiter(store Store, limit int, window time.Duration) *Limiter {
	return &Limiter{store: store, limit: limit, window: window, prefix: "ratelimit:signup:ip:"}
}

// CheckIP counts one request from ip.
func (l *Limiter) CheckIP(ctx context.Context, ip string) (*Result, error) {
	result, err := l.store.Allow(ctx, l.prefix+SanitizeKeySegment(ip), l.limit, l.window)
	if err != nil {
		return nil, fmt.Errorf("check ip rate limit: %w", err)
	}
	return result, nil
}

// SanitizeKeySegment escapes the key delimiter so a client-supplied value
// (X-Forwarded-For is client controlled) cannot address another bucket.
// IPv6 addresses contain ':' and are affected too, which is harmless.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}
