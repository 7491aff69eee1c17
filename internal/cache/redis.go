package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/airtech/config"
	"github.com/redis/go-redis/v9"
)

const (
	flightsPrefix   = "cache:flights"
	locationsPrefix = "cache:locations"
)

type RedisCache struct {
	client  *redis.Client
	listTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, listTTL time.Duration) *RedisCache {
	return NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}), listTTL)
}

func NewRedisCacheFromClient(client *redis.Client, listTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, listTTL: listTTL}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetList decodes the cached page into dst. It reports false on a miss.
func (c *RedisCache) GetList(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) SetList(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, c.listTTL).Err()
}

// Invalidate drops every cached page under prefix.
func (c *RedisCache) Invalidate(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, prefix+":*", 100).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// MarkReminded records that a reminder for the booking and travel date was
// queued. It reports false when one was already recorded.
func (c *RedisCache) MarkReminded(ctx context.Context, bookingID int64, travelDate string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, reminderKey(bookingID, travelDate), "queued", ttl).Result()
}

// UnmarkReminded forgets a recorded reminder so the next scan queues it again.
func (c *RedisCache) UnmarkReminded(ctx context.Context, bookingID int64, travelDate string) error {
	return c.client.Del(ctx, reminderKey(bookingID, travelDate)).Err()
}

func FlightsKey(page, size int) string {
	return fmt.Sprintf("%s:%d:%d", flightsPrefix, page, size)
}

func LocationsKey(page, size int) string {
	return fmt.Sprintf("%s:%d:%d", locationsPrefix, page, size)
}

func FlightsPrefix() string {
	return flightsPrefix
}

func LocationsPrefix() string {
	return locationsPrefix
}

func reminderKey(bookingID int64, travelDate string) string {
	return fmt.Sprintf("reminder:booking:%d:%s", bookingID, travelDate)
}
