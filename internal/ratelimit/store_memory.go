package ratelimit

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore keeps a sliding window of request timestamps per key. It is
// not shared between processes.
type InMemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*slidingWindow
	now     func() time.Time
}

type slidingWindow struct {
	timestamps []time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		buckets: make(map[string]*slidingWindow),
		now:     time.Now,
	}
}

func (s *InMemoryStore) Allow(_ context.Context, key string, limit int, window time.Duration) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sw := s.buckets[key]
	if sw == nil {
		sw = &slidingWindow{}
		s.buckets[key] = sw
	}
	sw.cleanup(now.Add(-window))

	allowed := len(sw.timestamps) < limit
	if allowed {
		sw.timestamps = append(sw.timestamps, now)
	}

	resetAt := now.Add(window)
	if len(sw.timestamps) > 0 {
		resetAt = sw.timestamps[0].Add(window)
	}
	return &Result{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: max(limit-len(sw.timestamps), 0),
		ResetAt:   resetAt,
	}, nil
}

// Sweep drops keys whose windows are empty. Call it periodically to bound
// memory for long-running processes.
func (s *InMemoryStore) Sweep(window time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-window)
	removed := 0
	for key, sw := range s.buckets {
		sw.cleanup(cutoff)
		if len(sw.timestamps) == 0 {
			delete(s.buckets, key)
			removed++
		}
	}
	return removed
}

// cleanup removes timestamps at or before cutoff.
func (sw *slidingWindow) cleanup(cutoff time.Time) {
	i := 0
	for ; i < len(sw.timestamps); i++ {
		if sw.timestamps[i].After(cutoff) {
			break
		}
	}
	sw.timestamps = sw.timestamps[i:]
}
