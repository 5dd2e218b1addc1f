// internal/service/consumeinfo/domain/port/publisher.go
package port

import (
	"context"

	"github.com/luoliAsyns/ConsumeInfo/internal/service/consumeinfo/domain"
)

// EventPublisher 在 Insert 成功后把完整记录发布到下游固定队列。
type EventPublisher interface {
	PublishInserted(ctx context.Context, info *domain.ConsumeInfo) error
}
