package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindowScript trims the window, admits the request when under the
// limit and reports {allowed, count, resetAtMs}. Scores are unix milliseconds.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
  redis.call('ZADD', key, now, ARGV[4])
  count = count + 1
  allowed = 1
end
redis.call('PEXPIRE', key, window)

local reset = now + window
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if oldest[2] then
  reset = tonumber(oldest[2]) + window
end
return {allowed, count, reset}
`)

// RedisStore shares sliding windows between instances. Each key is a sorted
// set of request ids scored by arrival time; the check and the insert run in
// one script so concurrent callers cannot overshoot the limit.
type RedisStore struct {
	client redis.Scripter
	now    func() time.Time
}

func NewRedisStore(client redis.Scripter) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func (s *RedisStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	now := s.now().UnixMilli()
	raw, err := slidingWindowScript.Run(ctx, s.client, []string{key},
		now, window.Milliseconds(), limit, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("redis sliding window %s: %w", key, err)
	}
	if len(raw) != 3 {
		return nil, fmt.Errorf("redis sliding window %s: unexpected reply %v", key, raw)
	}
	return &Result{
		Allowed:   raw[0] == 1,
		Limit:     limit,
		Remaining: max(limit-int(raw[1]), 0),
		ResetAt:   time.UnixMilli(raw[2]),
	}, nil
}
