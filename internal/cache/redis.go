package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Domenick1991/tripoffice/config"
	"github.com/Domenick1991/tripoffice/internal/domain"
	"github.com/redis/go-redis/v9"
)

const tripsKey = "cache:trips"

type RedisCache struct {
	client   redis.Cmdable
	tripsTTL time.Duration
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

func NewRedisCache(client redis.Cmdable, tripsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:   client,
		tripsTTL: tripsTTL,
	}
}

// GetTrips returns nil without error on a cache miss.
func (c *RedisCache) GetTrips(ctx context.Context) ([]domain.Trip, error) {
	data, err := c.client.Get(ctx, tripsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var trips []domain.Trip
	if err := json.Unmarshal(data, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

func (c *RedisCache) SetTrips(ctx context.Context, trips []domain.Trip) error {
	payload, err := json.Marshal(trips)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, tripsKey, payload, c.tripsTTL).Err()
}

func (c *RedisCache) InvalidateTrips(ctx context.Context) error {
	return c.client.Del(ctx, tripsKey).Err()
}
