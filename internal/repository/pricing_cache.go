package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pricing-service/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	effectivePricingKeyPrefix = "pricing:effective:"
	effectivePricingTTL       = 10 * time.Minute
)

// PricingCache caches resolved effective pricing per node in Redis.
// Entries are whole PricingInheritanceResult values, so a concurrent
// reader during invalidation sees either the old consistent result or
// nothing, never a partial update.
type PricingCache struct {
	redisClient *redis.Client
}

func NewPricingCache(redisClient *redis.Client) *PricingCache {
	return &PricingCache{redisClient: redisClient}
}

func effectivePricingKey(id uuid.UUID) string {
	return effectivePricingKeyPrefix + id.String()
}

// GetEffective returns the cached resolution for a node, or nil on miss.
func (c *PricingCache) GetEffective(ctx context.Context, id uuid.UUID) (*models.PricingInheritanceResult, error) {
	data, err := c.redisClient.Get(ctx, effectivePricingKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read pricing cache: %w", err)
	}

	var result models.PricingInheritanceResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode cached pricing: %w", err)
	}
	return &result, nil
}

// SetEffective stores a resolution with a TTL.
func (c *PricingCache) SetEffective(ctx context.Context, result *models.PricingInheritanceResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode pricing result: %w", err)
	}
	if err := c.redisClient.Set(ctx, effectivePricingKey(result.ID), data, effectivePricingTTL).Err(); err != nil {
		return fmt.Errorf("failed to write pricing cache: %w", err)
	}
	return nil
}

// InvalidateNodes drops the cached resolutions for the given node ids in
// one round trip.
func (c *PricingCache) InvalidateNodes(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, effectivePricingKey(id))
	}
	if err := c.redisClient.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate pricing cache: %w", err)
	}
	return nil
}
