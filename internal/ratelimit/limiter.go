package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter counts attempts per key inside a fixed window
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Noop allows everything. Used when Redis is not configured.
type Noop struct{}

// Allow always returns true
func (Noop) Allow(ctx context.Context, key string) (bool, error) {
	return true, nil
}

// RedisLimiter is a fixed window counter stored in Redis
type RedisLimiter struct {
	client *redis.Client
	prefix string
	limit  int64
	window time.Duration
	logger *zap.Logger
}

// NewRedisClient parses url and verifies the connection
func NewRedisClient(ctx context.Context, url string, logger *zap.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Connected to Redis", zap.String("addr", opts.Addr))
	return client, nil
}

// NewRedisLimiter creates a limiter allowing limit attempts per window
func NewRedisLimiter(client *redis.Client, prefix string, limit int, window time.Duration, logger *zap.Logger) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		limit:  int64(limit),
		window: window,
		logger: logger,
	}
}

// Allow records an attempt for key and reports whether it is within the limit
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := l.prefix + key

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.Error("Rate limit check failed", zap.String("key", redisKey), zap.Error(err))
		return false, err
	}

	count := incr.Val()
	if count > l.limit {
		l.logger.Warn("Rate limit exceeded",
			zap.String("key", redisKey),
			zap.Int64("count", count),
			zap.Int64("limit", l.limit),
		)
		return false, nil
	}
	return true, nil
}
