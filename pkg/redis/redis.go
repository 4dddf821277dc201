package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d999ss/haevn/config"
)

// Client wraps the Redis connection.
// Used for the per-day confirmation sequence and request rate limiting; both
// callers degrade gracefully when the client is nil.
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient connects and pings.
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	logger.Info("redis connected", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── confirmation sequence ──

const sequencePrefix = "booking:seq:"

// sequenceTTL keeps day counters around well past the day they cover, then
// lets Redis reclaim them.
const sequenceTTL = 72 * time.Hour

// NextSequence atomically increments and returns the confirmation sequence
// for a day key ("20250701"). Strictly increasing per day across all server
// instances sharing this Redis.
func (c *Client) NextSequence(ctx context.Context, dayKey string) (int64, error) {
	key := sequencePrefix + dayKey
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		c.rdb.Expire(ctx, key, sequenceTTL)
	}
	return n, nil
}

// ── rate limiting ──

const rateLimitPrefix = "rate_limit:"

// CheckRateLimit counts requests for the key within a fixed window and
// reports whether this request is allowed.
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	k := rateLimitPrefix + key
	n, err := c.rdb.Incr(ctx, k).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		c.rdb.Expire(ctx, k, window)
	}
	return n <= int64(limit), nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}
