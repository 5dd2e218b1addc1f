// internal/service/consumeinfo/domain/repository.go
package domain

import "context"

// ConsumeInfoRepository 是底层存储端口：对分表做原始 CRUD，不带缓存语义。
// 读路径只返回存活记录（is_deleted = false）；查不到返回 (nil, nil)，缺失是正常结果不是错误。
// 写路径要求受影响行数恰好为 1，否则视为失败，即使驱动没有报错。
type ConsumeInfoRepository interface {
	Insert(ctx context.Context, info *ConsumeInfo) error
	Update(ctx context.Context, info *ConsumeInfo) error
	Delete(ctx context.Context, goodsType string, id int64) error
	GetById(ctx context.Context, goodsType string, id int64) (*ConsumeInfo, error)
	GetByCoupon(ctx context.Context, goodsType, coupon string) (*ConsumeInfo, error)
}
