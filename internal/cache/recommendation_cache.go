package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pendingTTL = 24 * time.Hour
	lockTTL    = 60 * time.Second
)

// RecommendationCache keeps each user's pending recommendation view and an
// advisory in-flight generation lock in redis. A nil receiver (redis not
// configured) degrades to a no-op so the service works without a cache.
type RecommendationCache struct {
	client *redis.Client
}

// NewRecommendationCache connects to redis and verifies the connection.
func NewRecommendationCache(addr, password string) (*RecommendationCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RecommendationCache{client: rdb}, nil
}

func pendingKey(userID string) string {
	return fmt.Sprintf("recommendation:pending:user:%s", userID)
}

func lockKey(userID string) string {
	return fmt.Sprintf("recommendation:generating:user:%s", userID)
}

// SetPending stores the serialized pending recommendation for a user.
func (c *RecommendationCache) SetPending(ctx context.Context, userID string, payload []byte) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Set(ctx, pendingKey(userID), payload, pendingTTL).Err()
}

// GetPending returns the cached pending recommendation, or nil when absent.
func (c *RecommendationCache) GetPending(ctx context.Context, userID string) ([]byte, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	payload, err := c.client.Get(ctx, pendingKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// DropPending removes the cached entry after the recommendation is resolved.
func (c *RecommendationCache) DropPending(ctx context.Context, userID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, pendingKey(userID)).Err()
}

// AcquireGenerationLock marks a generation as in flight for the user.
// Returns false when another generation already holds the lock. The lock is
// advisory: it narrows the double-submission window but does not replace the
// database pending check.
func (c *RecommendationCache) AcquireGenerationLock(ctx context.Context, userID string) (bool, error) {
	if c == nil || c.client == nil {
		return true, nil
	}
	return c.client.SetNX(ctx, lockKey(userID), "1", lockTTL).Result()
}

// ReleaseGenerationLock clears the in-flight marker.
func (c *RecommendationCache) ReleaseGenerationLock(ctx context.Context, userID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, lockKey(userID)).Err()
}

// Close releases the redis connection.
func (c *RecommendationCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
