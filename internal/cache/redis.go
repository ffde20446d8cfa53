package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/nutriscan/nutriscan/internal/models"
)

// RedisCache shares resolved products across processes. Entries are written
// without a TTL to keep the no-expiry cache contract.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(redisURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &RedisCache{client: redis.NewClient(opt)}, nil
}

func (c *RedisCache) Get(ctx context.Context, barcode string, domain models.Domain) (*models.Product, bool, error) {
	raw, err := c.client.Get(ctx, redisKey(barcode, domain)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var p models.Product
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, false, fmt.Errorf("decode cached product: %w", err)
	}
	return &p, true, nil
}

func (c *RedisCache) Put(ctx context.Context, product *models.Product) error {
	raw, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("encode product: %w", err)
	}
	return c.client.Set(ctx, redisKey(product.Barcode, product.Domain), raw, 0).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func redisKey(barcode string, domain models.Domain) string {
	return "nutriscan:product:" + string(domain) + ":" + barcode
}
