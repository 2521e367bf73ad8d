//go:build integration

package ratelimit_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"signup/internal/ratelimit"
	"signup/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *ratelimit.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = ratelimit.NewRedisStore(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestAllowUpToLimit() {
	ctx := context.Background()
	for i := range 3 {
		result, err := s.store.Allow(ctx, "ratelimit:test:limit", 3, time.Minute)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(3-(i+1), result.Remaining)
	}

	result, err := s.store.Allow(ctx, "ratelimit:test:limit", 3, time.Minute)
	s.Require().NoError(err)
	s.False(result.Allowed)
	s.Equal(0, result.Remaining)
	s.True(result.ResetAt.After(time.Now()))

	ttl, err := s.redis.Client.PTTL(ctx, "ratelimit:test:limit").Result()
	s.Require().NoError(err)
	s.Positive(ttl)
}

func (s *RedisStoreSuite) TestWindowExpires() {
	ctx := context.Background()
	_, err := s.store.Allow(ctx, "ratelimit:test:expire", 1, 200*time.Millisecond)
	s.Require().NoError(err)

	denied, err := s.store.Allow(ctx, "ratelimit:test:expire", 1, 200*time.Millisecond)
	s.Require().NoError(err)
	s.False(denied.Allowed)

	time.Sleep(300 * time.Millisecond)
	allowed, err := s.store.Allow(ctx, "ratelimit:test:expire", 1, 200*time.Millisecond)
	s.Require().NoError(err)
	s.True(allowed.Allowed)
}

func (s *RedisStoreSuite) TestConcurrentAllow() {
	ctx := context.Background()
	const goroutines = 50
	const limit = 10
	var wg sync.WaitGroup
	var allowed atomic.Int32
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := s.store.Allow(ctx, "ratelimit:test:concurrent", limit, time.Minute)
			if err == nil && result.Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()
	s.Equal(int32(limit), allowed.Load())
}
