package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fitshare/auth-service/pkg/database"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const rateLimitKeyPrefix = "ratelimit:"

// slidingWindowScript trims the window, counts it and records the request in
// one step. Returns {allowed, count, oldest score}.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
redis.call('ZREMRANGEBYSCORE', key, '-inf', '(' .. ARGV[1])
local count = redis.call('ZCARD', key)
if count >= tonumber(ARGV[3]) then
	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	local score = 0
	if oldest[2] then
		score = tonumber(oldest[2])
	end
	return {0, count, score}
end
redis.call('ZADD', key, ARGV[2], ARGV[5])
redis.call('PEXPIRE', key, ARGV[4])
return {1, count + 1, 0}
`)

// RateLimitDecision is the outcome of a single rate limit check.
type RateLimitDecision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiter is a sliding window log limiter stored in Redis sorted sets.
type RateLimiter struct {
	redis *database.Redis
	now   func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(redis *database.Redis) *RateLimiter {
	return &RateLimiter{redis: redis, now: time.Now}
}

// Allow records a request for key if fewer than limit requests were seen
// within window.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (RateLimitDecision, error) {
	now := r.now()
	nowMs := now.UnixMilli()

	res, err := slidingWindowScript.Run(ctx, r.redis.Client,
		[]string{rateLimitKeyPrefix + key},
		strconv.FormatInt(nowMs-window.Milliseconds(), 10),
		strconv.FormatInt(nowMs, 10),
		limit,
		window.Milliseconds(),
		uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return RateLimitDecision{}, fmt.Errorf("failed to evaluate rate limit: %w", err)
	}
	if len(res) != 3 {
		return RateLimitDecision{}, fmt.Errorf("unexpected rate limit reply: %v", res)
	}

	decision := RateLimitDecision{Limit: limit}

	if res[0] == 0 {
		if res[2] > 0 {
			oldestAt := time.UnixMilli(res[2])
			decision.RetryAfter = max(window-now.Sub(oldestAt), 0)
		}
		return decision, nil
	}

	decision.Allowed = true
	decision.Remaining = max(limit-int(res[1]), 0)
	return decision, nil
}
