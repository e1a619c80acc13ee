// Package cache provides an optional Redis marker in front of the review
// store's duplicate check. The marker is a fast-path hint only; the store's
// uniqueness constraint remains the correctness mechanism.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const markerTTL = 24 * time.Hour

type ReviewCache struct {
	client *redis.Client
}

func NewReviewCache(client *redis.Client) *ReviewCache {
	return &ReviewCache{client: client}
}

func (c *ReviewCache) ReviewMarkerKey(wallet, productID string) string {
	return fmt.Sprintf("review:%s:%s", wallet, productID)
}

// GetMarker returns the review ID recorded for the pair, or "" when no
// marker is set.
func (c *ReviewCache) GetMarker(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return val, nil
}

func (c *ReviewCache) SetMarker(ctx context.Context, key, reviewID string) error {
	return c.client.Set(ctx, key, reviewID, markerTTL).Err()
}
