package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisFailureLimiter keeps one sorted set per key, scored by failure time in
// milliseconds, so every instance shares the same counts.
type RedisFailureLimiter struct {
	client *redis.Client
	config Config
	now    func() time.Time
}

func NewRedisFailureLimiter(client *redis.Client, config Config) *RedisFailureLimiter {
	return &RedisFailureLimiter{
		client: client,
		config: config,
		now:    time.Now,
	}
}

func (l *RedisFailureLimiter) Blocked(ctx context.Context, key string) (bool, time.Duration, error) {
	if l.config.MaxFailures <= 0 {
		return false, 0, nil
	}
	redisKey := l.getKey(key)
	now := l.now()
	windowStart := now.Add(-l.config.Window).UnixMilli()

	pipe := l.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart, 10))
	zcard := pipe.ZCard(ctx, redisKey)
	oldest := pipe.ZRangeWithScores(ctx, redisKey, 0, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to execute pipeline: %w", err)
	}

	if zcard.Val() < int64(l.config.MaxFailures) {
		return false, 0, nil
	}

	var retryAfter time.Duration
	if first := oldest.Val(); len(first) > 0 {
		expires := time.UnixMilli(int64(first[0].Score)).Add(l.config.Window)
		retryAfter = max(expires.Sub(now), 0)
	}
	return true, retryAfter, nil
}

func (l *RedisFailureLimiter) RecordFailure(ctx context.Context, key string) error {
	redisKey := l.getKey(key)
	nowMilli := l.now().UnixMilli()
	member := strconv.FormatInt(nowMilli, 10) + ":" + uuid.NewString()

	pipe := l.client.Pipeline()
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(nowMilli), Member: member})
	pipe.Expire(ctx, redisKey, l.config.Window+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record failure: %w", err)
	}
	return nil
}

func (l *RedisFailureLimiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.getKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to reset key %s: %w", key, err)
	}
	return nil
}

func (l *RedisFailureLimiter) getKey(identifier string) string {
	return fmt.Sprintf("ratelimit:signin:%s", identifier)
}
