package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront-service/internal/cart"
	"storefront-service/internal/models"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb     *redis.Client
	cartTTL time.Duration
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int, cartTTL time.Duration) (*Client, error) {
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

	return &Client{rdb: rdb, cartTTL: cartTTL}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// SaveCart persists a cart snapshot as JSON with the configured TTL so
// carts survive a service restart.
func (c *Client) SaveCart(ctx context.Context, userID string, lines []cart.Line) error {
	key := fmt.Sprintf("cart:%s", userID)

	if len(lines) == 0 {
		return c.rdb.Del(ctx, key).Err()
	}

	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}

	return c.rdb.Set(ctx, key, data, c.cartTTL).Err()
}

// LoadCart retrieves a persisted cart snapshot. A missing key returns
// an empty slice, not an error.
func (c *Client) LoadCart(ctx context.Context, userID string) ([]cart.Line, error) {
	key := fmt.Sprintf("cart:%s", userID)

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var lines []cart.Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart: %w", err)
	}
	return lines, nil
}

// DeleteCart drops a persisted cart
func (c *Client) DeleteCart(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("cart:%s", userID)).Err()
}

// SetRatingSummary caches a product's rating aggregate
func (c *Client) SetRatingSummary(ctx context.Context, summary *models.RatingSummary) error {
	key := fmt.Sprintf("rating:%s", summary.ProductID)

	pipe := c.rdb.Pipeline()
	pipe.HSet(ctx, key, "average", summary.AverageRating)
	pipe.HSet(ctx, key, "count", summary.TotalCount)

	_, err := pipe.Exec(ctx)
	return err
}

// GetRatingSummary retrieves a cached rating aggregate, or nil on a
// cache miss
func (c *Client) GetRatingSummary(ctx context.Context, productID string) (*models.RatingSummary, error) {
	key := fmt.Sprintf("rating:%s", productID)

	result, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}

	summary := models.RatingSummary{ProductID: productID}
	fmt.Sscanf(result["average"], "%f", &summary.AverageRating)
	fmt.Sscanf(result["count"], "%d", &summary.TotalCount)
	return &summary, nil
}

// SetOrderCount stores the per-user order counter maintained by the
// order worker
func (c *Client) SetOrderCount(ctx context.Context, userID string, count int) error {
	return c.rdb.Set(ctx, fmt.Sprintf("order_count:%s", userID), count, 0).Err()
}

// GetOrderCount retrieves the per-user order counter
func (c *Client) GetOrderCount(ctx context.Context, userID string) (int, error) {
	count, err := c.rdb.Get(ctx, fmt.Sprintf("order_count:%s", userID)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	return count, err
}
