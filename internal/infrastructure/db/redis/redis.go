package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPingTimeout = 5 * time.Second

// Config captures the settings for the closure-lock cache connection.
type Config struct {
	Addr     string
	Password string
	DB       int
	// PingTimeout bounds the connectivity check on startup.
	PingTimeout time.Duration
}

// Connect opens a Redis client for the closure-lock cache and verifies
// connectivity with a ping. The cache is optional, so callers treat a
// failure here as "run without the cache" rather than a fatal error.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:       cfg.Addr,
		Password:   cfg.Password,
		DB:         cfg.DB,
		ClientName: "prevencar-api",
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}
