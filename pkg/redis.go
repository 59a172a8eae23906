package pkg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/ielts-trainer/internal/config"
	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = 5 * time.Second

// NewRedisClient connects to REDIS_URL. Sign-in codes, revocations and practice rounds all live there,
// so the server does not start without it.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	opt.ClientName = "ielts-trainer"

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s unreachable: %w", opt.Addr, err)
	}

	return client, nil
}
