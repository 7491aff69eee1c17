package cache

import (
	"testing"
	"time"

	"github.com/Domenick1991/airtech/config"
	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "cache:flights:2:10", FlightsKey(2, 10))
	assert.Equal(t, "cache:locations:3:10", LocationsKey(3, 10))
	assert.Equal(t, "reminder:booking:42:2026-01-02", reminderKey(42, "2026-01-02"))
}

func TestNewRedisCache(t *testing.T) {
	c := NewRedisCache(config.RedisConfig{Addr: "localhost:6379"}, time.Minute)
	defer c.Close()

	assert.NotNil(t, c.client)
	assert.Equal(t, time.Minute, c.listTTL)
}
