package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetCached retrieves a cached JSON value into dest.
// Returns false on a miss.
func (c *Client) GetCached(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := c.rdb.Get(ctx, fmt.Sprintf("cache:%s", key)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("failed to decode cached value: %w", err)
	}
	return true, nil
}

// SetCached stores a JSON value with a TTL
func (c *Client) SetCached(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value for cache: %w", err)
	}
	return c.rdb.Set(ctx, fmt.Sprintf("cache:%s", key), raw, ttl).Err()
}

// InvalidateCached drops a cached value
func (c *Client) InvalidateCached(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("cache:%s", key)).Err()
}

// ClaimDailyCheckin atomically claims the check-in slot for a user and day.
// Returns false if the slot is already taken. The key expires at the next
// midnight so a new day starts clean. This is a fast guard only; the unique
// index on the ledger is the authority.
func (c *Client) ClaimDailyCheckin(ctx context.Context, userID, day string, until time.Time) (bool, error) {
	ttl := time.Until(until)
	if ttl <= 0 {
		ttl = time.Minute
	}
	return c.rdb.SetNX(ctx, checkinKey(userID, day), "1", ttl).Result()
}

// ReleaseDailyCheckin frees the check-in slot after a failed award so the
// user is not locked out until midnight.
func (c *Client) ReleaseDailyCheckin(ctx context.Context, userID, day string) error {
	return c.rdb.Del(ctx, checkinKey(userID, day)).Err()
}

// AcquireLock acquires a short-lived lock, used to serialize settlement
// per user
func (c *Client) AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("lock:%s", lockKey), "1", ttl).Result()
}

// ReleaseLock releases a lock
func (c *Client) ReleaseLock(ctx context.Context, lockKey string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("lock:%s", lockKey)).Err()
}

func checkinKey(userID, day string) string {
	return fmt.Sprintf("checkin:%s:%s", userID, day)
}
