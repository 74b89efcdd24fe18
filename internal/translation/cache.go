package translation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"
)

// Cache est le cache de lecture devant content_translations
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// RedisCache stocke les traductions dans Redis avec une durée de vie
type RedisCache struct {
	client rueidis.Client
	ttl    time.Duration
}

func NewRedisCache(client rueidis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Do(ctx, c.client.B().Get().Key(key).Build()).ToString()
	if rueidis.IsRedisNil(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string) error {
	return c.client.Do(ctx, c.client.B().Set().Key(key).Value(value).Ex(c.ttl).Build()).Error()
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Do(ctx, c.client.B().Del().Key(keys...).Build()).Error()
}

func cacheKey(contentType, objectID, field, lang string) string {
	return fmt.Sprintf("tr:%s:%s:%s:%s", contentType, objectID, field, lang)
}
