package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"nftclicks-backend/internal/common/config"
	"nftclicks-backend/internal/common/logger"
)

// Client wraps go-redis to allow future extensions.
type Client struct {
	*redis.Client
}

// NewClient creates a Redis client and pings it to validate the connection.
func NewClient(cfg *config.Config) (*Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)

	c := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info().
		Str("addr", addr).
		Int("db", cfg.Redis.DB).
		Msg("Redis client initialized")

	return &Client{Client: c}, nil
}
