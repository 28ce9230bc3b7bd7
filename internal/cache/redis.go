package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Dmytro-Kruhlov/hw-web-14/internal/models"
)

// Client wraps the shared redis connection used for the per-route rate
// limiter and the short-lived authenticated-user cache.
type Client struct {
	rdb *redis.Client
}

func New(ctx context.Context, addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis at %q: %w", addr, err)
	}
	return &Client{rdb: rdb}, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// Allow counts a hit against the fixed window for key and reports whether
// the caller is still within limit. The window TTL is set only when the
// key is first created, so the window does not slide.
func (c *Client) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	pipe := c.rdb.TxPipeline()
	incr := pipe.Incr(ctx, "rl:"+key)
	pipe.ExpireNX(ctx, "rl:"+key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit incr %q: %w", key, err)
	}
	return incr.Val() <= int64(limit), nil
}

func userKey(email string) string {
	return "user:" + email
}

// GetUser returns the cached user for email, or (nil, nil) on a miss.
// Entries are written with a TTL of a few seconds and never invalidated
// early, so role or confirmation changes may lag by that much.
func (c *Client) GetUser(ctx context.Context, email string) (*models.User, error) {
	raw, err := c.rdb.Get(ctx, userKey(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached user %q: %w", email, err)
	}
	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode cached user %q: %w", email, err)
	}
	return &u, nil
}

// SetUser caches u under its email for ttl.
func (c *Client) SetUser(ctx context.Context, u *models.User, ttl time.Duration) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user %q: %w", u.Email, err)
	}
	if err := c.rdb.Set(ctx, userKey(u.Email), raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache user %q: %w", u.Email, err)
	}
	return nil
}
