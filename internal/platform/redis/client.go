package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"pulseboard/internal/platform/config"
)

// Client is the shared Redis connection for the job queue. It embeds the
// go-redis client so callers can issue commands directly and adds the
// health probe the readiness endpoint wants.
type Client struct {
	*redis.Client
}

// New dials Redis and verifies the connection with a ping, so a bad URL
// fails at startup rather than on the first enqueue. Connection options
// beyond pool size are taken from the URL itself.
func New(cfg config.RedisConfig) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Client{Client: client}, nil
}

// Health reports whether the connection still answers pings.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.Client.Close()
}
