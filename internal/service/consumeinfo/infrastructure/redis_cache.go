// internal/service/consumeinfo/infrastructure/redis_cache.go
package infrastructure

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/luoliAsyns/ConsumeInfo/internal/service/consumeinfo/domain"
)

// RedisConsumeInfoCache 是 port.Cache 的 go-redis 实现，值为 JSON 快照。
type RedisConsumeInfoCache struct {
	client *redis.Client
}

func NewRedisConsumeInfoCache(client *redis.Client) *RedisConsumeInfoCache {
	return &RedisConsumeInfoCache{client: client}
}

// Get 未命中返回 (nil, nil)；损坏的缓存值按未命中处理并顺手清掉。
func (c *RedisConsumeInfoCache) Get(ctx context.Context, key string) (*domain.ConsumeInfo, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "cache get [%s]", key)
	}

	var info domain.ConsumeInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		c.client.Del(ctx, key)
		return nil, nil
	}
	return &info, nil
}

func (c *RedisConsumeInfoCache) Set(ctx context.Context, key string, info *domain.ConsumeInfo, ttl time.Duration) error {
	raw, err := json.Marshal(info)
	if err != nil {
		return errors.Wrapf(err, "cache marshal [%s]", key)
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return errors.Wrapf(err, "cache set [%s]", key)
	}
	return nil
}

func (c *RedisConsumeInfoCache) Del(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return errors.Wrapf(err, "cache del [%s]", key)
	}
	return nil
}
