// internal/service/consumeinfo/domain/port/cache.go
package port

import (
	"context"
	"time"

	"github.com/luoliAsyns/ConsumeInfo/internal/service/consumeinfo/domain"
)

// Cache 是快照缓存端口。缓存是建议性的：Get 未命中返回 (nil, nil)，
// 任何缓存故障都不应该让主流程失败。
type Cache interface {
	Get(ctx context.Context, key string) (*domain.ConsumeInfo, error)
	Set(ctx context.Context, key string, info *domain.ConsumeInfo, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}
