package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mindreel/relevance/internal/config"
)

// Limiter decides whether the caller identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Unlimited allows every call.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string) (bool, error) { return true, nil }

const keyPrefix = "relevance:ratelimit:"

// RedisLimiter counts calls per key in fixed windows. The counter for a
// window is created by the first INCR and expires with the window.
type RedisLimiter struct {
	client   *redis.Client
	requests int64
	window   time.Duration
	now      func() time.Time
}

func New(cfg config.RateLimitConfig) (*RedisLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
	}
	return NewWithClient(client, cfg), nil
}

func NewWithClient(client *redis.Client, cfg config.RateLimitConfig) *RedisLimiter {
	return &RedisLimiter{
		client:   client,
		requests: int64(cfg.Requests),
		window:   cfg.Window,
		now:      time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	slot := l.now().UnixNano() / int64(l.window)
	k := fmt.Sprintf("%s%s:%d", keyPrefix, key, slot)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("count %s: %w", key, err)
	}
	return incr.Val() <= l.requests, nil
}

func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
