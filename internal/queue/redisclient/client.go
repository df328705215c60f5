package redisclient

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	redisdb *redis.Client
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

func New(cfg Config) *Client {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  5 * time.Second, // must exceed the blocking pop timeout
		WriteTimeout: 2 * time.Second,
	})

	return &Client{redisdb: redisdb}
}

// Ping checks redis connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.redisdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.redisdb.Close()
}

// Push appends one encoded job to the named queue.
func (c *Client) Push(ctx context.Context, queue string, payload []byte) error {
	return c.redisdb.LPush(ctx, queue, payload).Err()
}

// Pop blocks up to timeout waiting for a job. The second return is false
// when the wait timed out with nothing to do.
func (c *Client) Pop(ctx context.Context, queue string, timeout time.Duration) ([]byte, bool, error) {
	res, err := c.redisdb.BRPop(ctx, timeout, queue).Result()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}

		return nil, false, err
	}

	// BRPOP returns [key, value]
	if len(res) != 2 {
		return nil, false, nil
	}

	return []byte(res[1]), true, nil
}
