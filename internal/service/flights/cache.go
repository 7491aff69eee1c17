package flights

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Cache stores serialized list pages.
type Cache interface {
	GetList(ctx context.Context, key string, dst any) (bool, error)
	SetList(ctx context.Context, key string, value any) error
	Invalidate(ctx context.Context, prefix string) error
}

type listCache struct {
	cache Cache
	log   logrus.FieldLogger
}

// load fills dst from the cache. Cache failures count as misses.
func (c listCache) load(ctx context.Context, key string, dst any) bool {
	if c.cache == nil {
		return false
	}
	hit, err := c.cache.GetList(ctx, key, dst)
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache read failed")
		return false
	}
	return hit
}

func (c listCache) store(ctx context.Context, key string, value any) {
	if c.cache == nil {
		return
	}
	if err := c.cache.SetList(ctx, key, value); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}

func (c listCache) drop(ctx context.Context, prefixes ...string) {
	if c.cache == nil {
		return
	}
	for _, prefix := range prefixes {
		if err := c.cache.Invalidate(ctx, prefix); err != nil {
			c.log.WithError(err).WithField("prefix", prefix).Warn("cache invalidation failed")
		}
	}
}
