// internal/service/consumeinfo/domain/port/compensation.go
package port

import (
	"context"

	"github.com/luoliAsyns/ConsumeInfo/internal/service/consumeinfo/domain"
)

// CouponService 按券码回查券实体，补偿流程用它定位外部订单。
type CouponService interface {
	Query(ctx context.Context, coupon string) (*domain.Coupon, error)
}

// ExternalOrderService 按 (platform, tid) 回查外部订单实体。
type ExternalOrderService interface {
	Get(ctx context.Context, fromPlatform, tid string) (*domain.ExternalOrder, error)
}

// OperatorNotifier 把结构化告警推给值班通道（IM webhook 之类）。
type OperatorNotifier interface {
	Notify(ctx context.Context, message string) error
}
